package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/images"
	"github.com/boardsnap/boardsnap/internal/metrics"
	"github.com/boardsnap/boardsnap/internal/position"
	"github.com/boardsnap/boardsnap/internal/providers"
	"github.com/google/uuid"
)

// Result is the outcome of analyzing one chessboard image.
// Failures carry Error and Kind instead of a PGN.
type Result struct {
	ID        string            `json:"id"`
	Success   bool              `json:"success"`
	PGN       string            `json:"pgn,omitempty"`
	FEN       string            `json:"fen,omitempty"`
	Error     string            `json:"error,omitempty"`
	Kind      apperrors.Kind    `json:"kind,omitempty"`
	Provider  providers.ID      `json:"provider,omitempty"`
	Model     string            `json:"model,omitempty"`
	Strategy  position.Strategy `json:"strategy,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Err returns the classified error of a failed result, or nil on success
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &apperrors.AppError{Kind: r.Kind, Message: r.Error}
}

// Failure builds a failed result from err. Errors that are not classified count as configuration errors.
func Failure(err error) Result {
	r := newResult()
	r.fail(err)
	return r
}

func newResult() Result {
	return Result{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Result) fail(err error) {
	var appErr *apperrors.AppError
	if err == nil {
		appErr = apperrors.NewProviderError("unknown error", nil)
	} else if !errors.As(err, &appErr) {
		appErr = apperrors.NewConfigurationError(err.Error(), err)
	}
	r.Success = false
	r.Kind = appErr.Kind
	r.Error = appErr.Message
}

// Options tweak a single analysis request
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Service dispatches chessboard images to vision providers and extracts the position from the reply
type Service struct {
	newProvider func(providers.Config) (providers.Provider, error)
	options     Options
}

// NewService creates a service using the registered providers
func NewService() *Service {
	return &Service{
		newProvider: providers.New,
		options: Options{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
	}
}

// Analyze sends the image to the configured provider and returns the extracted position.
// It never returns an error: every failure is folded into the result.
func (s *Service) Analyze(ctx context.Context, image images.Payload, cfg providers.Config) Result {
	start := time.Now()
	result := newResult()
	result.Provider = cfg.Provider

	defer func() {
		metrics.ObserveAnalysis(string(result.Provider), string(result.Kind), time.Since(start))
	}()

	if image.Empty() {
		result.fail(apperrors.NewConfigurationError("no image provided", nil))
		return result
	}

	provider, err := s.newProvider(cfg)
	if err != nil {
		slog.Warn("Provider not available", "provider", cfg.Provider, "err", err)
		result.fail(err)
		return result
	}

	model := cfg.Model
	if model == "" {
		model = provider.DefaultModel()
	}
	result.Provider = provider.ID()
	result.Model = model

	slog.Info("Analyzing image", "id", result.ID, "provider", provider.ID(), "model", model, "mime_type", image.MIMEType)

	reply, err := provider.Complete(ctx, providers.Request{
		Model:        model,
		SystemPrompt: SystemPrompt,
		Prompt:       Prompt,
		Image:        image,
		Temperature:  s.options.Temperature,
		MaxTokens:    s.options.MaxTokens,
	})
	if err != nil {
		classified := provider.Classify(err)
		slog.Error("Provider request failed", "id", result.ID, "provider", provider.ID(), "kind", classified.Kind, "err", err)
		result.fail(classified)
		return result
	}

	slog.Debug("Raw provider reply", "id", result.ID, "provider", provider.ID(), "reply", reply)

	extraction := position.Extract(reply)
	if !extraction.Usable() {
		result.fail(apperrors.NewExtractionError(nil))
		return result
	}

	metrics.ObserveExtraction(string(extraction.Strategy))

	result.Success = true
	result.PGN = extraction.PGN
	result.FEN = extraction.FEN
	result.Strategy = extraction.Strategy

	slog.Info("Extracted position", "id", result.ID, "strategy", extraction.Strategy, "has_fen", extraction.HasFEN(), "length", len(result.PGN))
	return result
}
