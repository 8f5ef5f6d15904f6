package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/providers"
)

// NoConfigurationMessage is reported when no provider has a credential
const NoConfigurationMessage = "No API configuration found. Set a provider API key with `boardsnap config set <provider>.api_key <key>` or an environment variable such as OPENAI_API_KEY."

// Resolve builds the provider configuration for one request. An explicit provider (the
// override, then the stored setting) wins; otherwise the first provider in
// providers.SelectionOrder with a credential is used. A chosen provider with no
// credential is returned as is, leaving the empty-credential check to providers.New.
func Resolve(store KeyValueStore, providerOverride, modelOverride string) (providers.Config, error) {
	name := strings.ToLower(strings.TrimSpace(providerOverride))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(store.Get(KeyProvider)))
	}

	model := modelOverride
	if model == "" {
		model = store.Get(KeyModel)
	}

	if name != "" {
		id := providers.ID(name)
		if !slices.Contains(providers.SelectionOrder, id) {
			return providers.Config{}, apperrors.NewConfigurationError(fmt.Sprintf("unsupported provider: %q", name), nil)
		}
		return configFor(store, id, model), nil
	}

	for _, id := range providers.SelectionOrder {
		if strings.TrimSpace(store.Get(APIKeyKey(id))) != "" {
			slog.Debug("Selected provider by key availability", "provider", id)
			return configFor(store, id, model), nil
		}
	}

	return providers.Config{}, apperrors.NewConfigurationError(NoConfigurationMessage, nil)
}

func configFor(store KeyValueStore, id providers.ID, model string) providers.Config {
	return providers.Config{
		Provider: id,
		APIKey:   strings.TrimSpace(store.Get(APIKeyKey(id))),
		Model:    model,
		BaseURL:  store.Get(BaseURLKey(id)),
	}
}
