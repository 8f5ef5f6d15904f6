package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/providers"
	"github.com/spf13/viper"
)

// Setting keys understood by the store
const (
	KeyProvider       = "provider"
	KeyModel          = "model"
	KeyLichessBaseURL = "lichess.base_url"
	KeyRequestTimeout = "request_timeout"
)

// DefaultRequestTimeout bounds a single provider round trip
const DefaultRequestTimeout = 2 * time.Minute

// KeyValueStore is the persisted settings capability used to resolve provider configuration
type KeyValueStore interface {
	Get(key string) string
	Set(key, value string) error
}

// MemoryStore is a KeyValueStore that never touches disk. The zero value is empty and ready to use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns a store holding a copy of values
func NewMemoryStore(values map[string]string) *MemoryStore {
	s := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MemoryStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}

// APIKeyKey returns the setting key holding the credential for a provider
func APIKeyKey(id providers.ID) string {
	return string(id) + ".api_key"
}

// BaseURLKey returns the setting key holding the API root override for a provider
func BaseURLKey(id providers.ID) string {
	return string(id) + ".base_url"
}

// Keys lists every setting key in display order
func Keys() []string {
	keys := []string{KeyProvider, KeyModel}
	for _, id := range providers.SelectionOrder {
		keys = append(keys, APIKeyKey(id), BaseURLKey(id))
	}
	return append(keys, KeyLichessBaseURL, KeyRequestTimeout)
}

// IsSecret reports whether the value of key should be masked when displayed
func IsSecret(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

// conventionalEnv lists the environment variables read for each provider key besides BOARDSNAP_*
var conventionalEnv = map[providers.ID][]string{
	providers.OpenAI:   {"OPENAI_API_KEY", "VITE_OPENAI_API_KEY"},
	providers.DeepSeek: {"DEEPSEEK_API_KEY", "VITE_DEEPSEEK_API_KEY"},
	providers.Gemini:   {"GEMINI_API_KEY", "VITE_GEMINI_API_KEY"},
}

// Store is a viper-backed settings store persisted as YAML
type Store struct {
	path string
	v    *viper.Viper
}

// DefaultPath returns $XDG_CONFIG_HOME/boardsnap/config.yaml or the platform equivalent
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "boardsnap", "config.yaml"), nil
}

// Load reads the settings file at path, if it exists, layered under environment overrides.
// An empty path means DefaultPath.
func Load(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout.String())

	v.SetEnvPrefix("BOARDSNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for id, names := range conventionalEnv {
		key := APIKeyKey(id)
		envNames := append([]string{"BOARDSNAP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envNames...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := readIfExists(v, path); err != nil {
		return nil, err
	}

	return &Store{path: path, v: v}, nil
}

func readIfExists(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Path returns the settings file location
func (s *Store) Path() string {
	return s.path
}

// Get returns the effective value of key, environment first
func (s *Store) Get(key string) string {
	return s.v.GetString(key)
}

// Set validates key, stores value and writes the settings file. Only values that came
// from the file or from Set are written, never environment overrides.
func (s *Store) Set(key, value string) error {
	if !slices.Contains(Keys(), key) {
		return apperrors.NewConfigurationError(fmt.Sprintf("unknown setting %q", key), nil)
	}
	switch key {
	case KeyProvider:
		if value != "" && !slices.Contains(providers.SelectionOrder, providers.ID(strings.ToLower(value))) {
			return apperrors.NewConfigurationError(fmt.Sprintf("unsupported provider: %q", value), nil)
		}
		value = strings.ToLower(value)
	case KeyRequestTimeout:
		if _, err := time.ParseDuration(value); err != nil {
			return apperrors.NewConfigurationError(fmt.Sprintf("invalid duration %q", value), err)
		}
	}

	file := viper.New()
	file.SetConfigFile(s.path)
	file.SetConfigType("yaml")
	if err := readIfExists(file, s.path); err != nil {
		return err
	}
	file.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}

	s.v.Set(key, value)
	return nil
}

// RequestTimeout returns the configured provider timeout
func (s *Store) RequestTimeout() time.Duration {
	d := s.v.GetDuration(KeyRequestTimeout)
	if d <= 0 {
		return DefaultRequestTimeout
	}
	return d
}

// LichessBaseURL returns the configured analysis site root; empty means lichess.org
func (s *Store) LichessBaseURL() string {
	return s.v.GetString(KeyLichessBaseURL)
}

// Mask hides all but the last four characters of a secret
func Mask(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
