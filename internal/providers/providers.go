package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/images"
)

// ID identifies a vision provider
type ID string

const (
	OpenAI   ID = "openai"
	DeepSeek ID = "deepseek"
	Gemini   ID = "gemini"
)

// SelectionOrder is the order in which providers are tried when none is configured
// explicitly; the first one with a credential wins.
var SelectionOrder = []ID{DeepSeek, OpenAI, Gemini}

// Config represents the configuration for a vision provider
type Config struct {
	Provider ID
	APIKey   string
	Model    string
	BaseURL  string
}

// Request is a single image analysis request
type Request struct {
	Model        string
	SystemPrompt string
	Prompt       string
	Image        images.Payload
	Temperature  float64
	MaxTokens    int
}

// Provider defines the interface for a vision provider.
// Complete builds the provider request, sends it and returns the reply text.
// Classify turns an error returned by Complete into a quota or provider error.
type Provider interface {
	ID() ID
	Name() string
	DefaultModel() string
	Complete(ctx context.Context, req Request) (string, error)
	Classify(err error) *apperrors.AppError
}

// Factory creates a provider from its configuration
type Factory func(cfg Config) (Provider, error)

var (
	mu       sync.RWMutex
	registry = make(map[ID]Factory)
)

// Register makes a provider available under id. It is meant to be called from init.
func Register(id ID, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[id]; exists {
		panic(fmt.Sprintf("provider %s registered twice", id))
	}
	registry[id] = factory
}

// Registered lists the registered provider IDs in sorted order
func Registered() []ID {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func joinIDs(ids []ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// ParseID normalizes a provider name and checks that it is registered
func ParseID(name string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	mu.RLock()
	_, ok := registry[id]
	mu.RUnlock()
	if !ok {
		return "", apperrors.NewConfigurationError(fmt.Sprintf("unsupported provider: %q (registered: %s)", name, joinIDs(Registered())), nil)
	}
	return id, nil
}

// New validates cfg and builds the provider. Nothing is sent over the network.
func New(cfg Config) (Provider, error) {
	id, err := ParseID(string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("no API key configured for %s", id), nil)
	}

	mu.RLock()
	factory := registry[id]
	mu.RUnlock()

	cfg.Provider = id
	p, err := factory(cfg)
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("failed to create %s provider", id), err)
	}
	return p, nil
}
