package openai

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
	DefaultModel = "gpt-4o"
	// DefaultBaseURL is the OpenAI API root
	DefaultBaseURL = "https://api.openai.com/v1"
)

func init() {
	providers.Register(providers.OpenAI, func(cfg providers.Config) (providers.Provider, error) {
		return New(cfg), nil
	})
}

// OpenAI is a provider for OpenAI chat completions with image input
type OpenAI struct {
	client *goopenai.Client
	model  string
}

// New returns a new OpenAI provider
func New(cfg providers.Config) *OpenAI {
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAI{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (o *OpenAI) ID() providers.ID     { return providers.OpenAI }
func (o *OpenAI) Name() string         { return "OpenAI" }
func (o *OpenAI) DefaultModel() string { return o.model }

// Complete sends the system prompt and the user prompt with the image attached as a data URL
func (o *OpenAI) Complete(ctx context.Context, req providers.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role: goopenai.ChatMessageRoleUser,
		MultiContent: []goopenai.ChatMessagePart{
			{
				Type: goopenai.ChatMessagePartTypeText,
				Text: req.Prompt,
			},
			{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    req.Image.DataURL(),
					Detail: goopenai.ImageURLDetailAuto,
				},
			},
		},
	})

	slog.Debug("Sending OpenAI request", "model", model, "mime_type", req.Image.MIMEType)

	resp, err := o.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// Classify maps an OpenAI API error to a quota or provider error
func (o *OpenAI) Classify(err error) *apperrors.AppError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return providers.ClassifyMessage(o.Name(), apiErr.Message, apiErr.Type, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		message := ""
		if reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
		return providers.ClassifyMessage(o.Name(), message, "", err)
	}

	return providers.ClassifyMessage(o.Name(), "", "", err)
}
