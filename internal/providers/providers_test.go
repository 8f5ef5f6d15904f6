package providers

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeID ID = "fake"

type fakeProvider struct {
	cfg Config
}

func (f *fakeProvider) ID() ID               { return fakeID }
func (f *fakeProvider) Name() string         { return "Fake" }
func (f *fakeProvider) DefaultModel() string { return "fake-vision" }
func (f *fakeProvider) Complete(ctx context.Context, req Request) (string, error) {
	return "", nil
}
func (f *fakeProvider) Classify(err error) *apperrors.AppError {
	return ClassifyMessage(f.Name(), err.Error(), "", err)
}

func init() {
	Register(fakeID, func(cfg Config) (Provider, error) {
		return &fakeProvider{cfg: cfg}, nil
	})
}

func TestNew(t *testing.T) {
	p, err := New(Config{Provider: " FAKE ", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, fakeID, p.ID())
	assert.Equal(t, fakeID, p.(*fakeProvider).cfg.Provider)
}

func TestNewConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "empty key", cfg: Config{Provider: fakeID}},
		{name: "blank key", cfg: Config{Provider: fakeID, APIKey: "   "}},
		{name: "unknown provider", cfg: Config{Provider: "mystery", APIKey: "sk-test"}},
		{name: "no provider", cfg: Config{APIKey: "sk-test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))
		})
	}
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, Registered(), fakeID)

	_, err := ParseID("ollama")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported provider: "ollama"`)
	assert.Contains(t, err.Error(), string(fakeID))
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(fakeID, func(cfg Config) (Provider, error) { return nil, nil })
	})
}

func TestClassifyMessage(t *testing.T) {
	cause := errors.New("upstream")

	tests := []struct {
		name     string
		message  string
		errType  string
		wantKind apperrors.Kind
		wantMsg  string
	}{
		{name: "exceeded in message", message: "Rate limit exceeded", wantKind: apperrors.KindQuotaExceeded, wantMsg: apperrors.QuotaExceededMessage},
		{name: "quota upper case", message: "QUOTA reached", wantKind: apperrors.KindQuotaExceeded, wantMsg: apperrors.QuotaExceededMessage},
		{name: "insufficient_quota type", message: "Please check your plan", errType: TypeInsufficientQuota, wantKind: apperrors.KindQuotaExceeded, wantMsg: apperrors.QuotaExceededMessage},
		{name: "generic with message", message: "Invalid image", wantKind: apperrors.KindProvider, wantMsg: "Invalid image"},
		{name: "generic without message", wantKind: apperrors.KindProvider, wantMsg: "failed to analyze image with Fake"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyMessage("Fake", tt.message, tt.errType, cause)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.ErrorIs(t, got, cause)
		})
	}
}
