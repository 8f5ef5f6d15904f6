package deepseek

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/providers"
	goopenai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the vision model used when none is configured
	DefaultModel = "deepseek-vision"
	// DefaultBaseURL is the DeepSeek API root
	DefaultBaseURL = "https://api.deepseek.com/v1"
)

func init() {
	providers.Register(providers.DeepSeek, func(cfg providers.Config) (providers.Provider, error) {
		return New(cfg), nil
	})
}

// DeepSeek is a provider for the OpenAI-compatible DeepSeek chat completions API
type DeepSeek struct {
	client *goopenai.Client
	model  string
}

// New returns a new DeepSeek provider
func New(cfg providers.Config) *DeepSeek {
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &DeepSeek{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (d *DeepSeek) ID() providers.ID     { return providers.DeepSeek }
func (d *DeepSeek) Name() string         { return "DeepSeek" }
func (d *DeepSeek) DefaultModel() string { return d.model }

// Complete sends a single user message holding the prompt and the image.
// DeepSeek gets no system message.
func (d *DeepSeek) Complete(ctx context.Context, req providers.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = d.model
	}

	slog.Debug("Sending DeepSeek request", "model", model, "mime_type", req.Image.MIMEType)

	resp, err := d.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{
						Type: goopenai.ChatMessagePartTypeText,
						Text: req.Prompt,
					},
					{
						Type:     goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{URL: req.Image.DataURL()},
					},
				},
			},
		},
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("deepseek chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from DeepSeek")
	}

	return resp.Choices[0].Message.Content, nil
}

// Classify maps a DeepSeek error to a quota or provider error
func (d *DeepSeek) Classify(err error) *apperrors.AppError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return providers.ClassifyMessage(d.Name(), apiErr.Message, apiErr.Type, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.Err != nil {
		return providers.ClassifyMessage(d.Name(), reqErr.Err.Error(), "", err)
	}

	return providers.ClassifyMessage(d.Name(), "", "", err)
}
