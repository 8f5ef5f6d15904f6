package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/providers"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultModel is the vision model used when none is configured
const DefaultModel = "gemini-1.5-flash"

func init() {
	providers.Register(providers.Gemini, func(cfg providers.Config) (providers.Provider, error) {
		return New(cfg), nil
	})
}

// Gemini is a provider for Google Gemini
type Gemini struct {
	apiKey   string
	model    string
	endpoint string
}

// New returns a new Gemini provider
func New(cfg providers.Config) *Gemini {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: cfg.BaseURL,
	}
}

func (g *Gemini) ID() providers.ID     { return providers.Gemini }
func (g *Gemini) Name() string         { return "Gemini" }
func (g *Gemini) DefaultModel() string { return g.model }

// Complete sends the prompt and the image as inline data and returns the text parts of the first candidate
func (g *Gemini) Complete(ctx context.Context, req providers.Request) (string, error) {
	opts := []option.ClientOption{option.WithAPIKey(g.apiKey)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	modelName := req.Model
	if modelName == "" {
		modelName = g.model
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	data, err := req.Image.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	slog.Debug("Sending Gemini request", "model", modelName, "format", req.Image.Format())

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt), genai.ImageData(req.Image.Format(), data))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return sb.String(), nil
}

// Classify maps a Gemini error to a quota or provider error.
// RESOURCE_EXHAUSTED and HTTP 429 count as quota errors.
func (g *Gemini) Classify(err error) *apperrors.AppError {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code == http.StatusTooManyRequests {
			return apperrors.NewQuotaExceededError(err)
		}
		return providers.ClassifyMessage(g.Name(), gErr.Message, "", err)
	}

	if st, ok := status.FromError(unwrapStatus(err)); ok && st.Code() != codes.Unknown {
		if st.Code() == codes.ResourceExhausted {
			return apperrors.NewQuotaExceededError(err)
		}
		return providers.ClassifyMessage(g.Name(), st.Message(), "", err)
	}

	if providers.IsQuotaMessage(err.Error()) {
		return apperrors.NewQuotaExceededError(err)
	}
	return providers.ClassifyMessage(g.Name(), "", "", err)
}

// unwrapStatus finds the innermost error carrying a gRPC status
func unwrapStatus(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if _, ok := e.(interface{ GRPCStatus() *status.Status }); ok {
			return e
		}
	}
	return err
}
