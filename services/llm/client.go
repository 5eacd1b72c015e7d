package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/friedmanirma8-svg/Got/services/engine"
	"github.com/friedmanirma8-svg/Got/services/ingest"
)

// DefaultBaseURL targets the Together.ai OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.together.xyz/v1"

// DefaultModel is used when no model is configured.
const DefaultModel = "meta-llama/Llama-3.3-70B-Instruct-Turbo"

const apiKeySecretPath = "/run/secrets/together_api_key"

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// Config configures the chat-completions thought generator.
type Config struct {
	APIKey       string
	BaseURL      string // defaults to DefaultBaseURL
	Model        string // defaults to DefaultModel
	SystemPrompt string
	Params       GenerationParams
}

// Client generates thoughts through an OpenAI-compatible chat completions
// endpoint. It implements engine.Generator.
type Client struct {
	client *openai.Client
	config Config
	logger *slog.Logger
}

// NewClient creates a thought generator client.
//
// The API key is resolved from Config.APIKey, then the TOGETHER_API_KEY
// and OPENAI_API_KEY environment variables, then the container secret at
// /run/secrets/together_api_key.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("TOGETHER_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		data, err := os.ReadFile(apiKeySecretPath)
		if err != nil {
			logger.Error("no API key in config, environment or secrets", "path", apiKeySecretPath)
			return nil, fmt.Errorf("llm: no API key configured")
		}
		apiKey = strings.TrimSpace(string(data))
		logger.Info("read the API key from container secrets")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
		logger.Warn("model not set, using default", "model", DefaultModel)
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = "You are a careful assistant that reasons step by step."
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = config.BaseURL

	logger.Info("initializing thought generator",
		"base_url", config.BaseURL,
		"model", config.Model,
	)
	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}, nil
}

// GenerateThought implements engine.Generator.
func (c *Client) GenerateThought(ctx context.Context, req engine.ThoughtRequest) (string, error) {
	question, parts := splitInput(req.Input)

	template := refinePrompt
	if req.FirstStep {
		template = initialPrompt
	}
	prompt := renderPrompt(template, req.History, question, req.Reasoning)

	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if parts.HasImage() {
		content := []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		}}
		for _, part := range parts {
			if part.Type != ingest.PartImage {
				continue
			}
			content = append(content, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: part.ImageURL,
				},
			})
		}
		userMsg.MultiContent = content
	} else {
		userMsg.Content = prompt
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.config.SystemPrompt},
			userMsg,
		},
	}
	applyParams(&chatReq, c.config.Params)

	c.logger.Debug("requesting thought",
		"model", c.config.Model,
		"first_step", req.FirstStep,
	)
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		c.logger.Error("chat completion failed", "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("provider returned no choices")
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	c.logger.Debug("received thought", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// splitInput reduces the engine's opaque input to a textual question plus
// any structured parts.
func splitInput(input any) (string, ingest.Parts) {
	switch v := input.(type) {
	case string:
		return v, nil
	case ingest.Parts:
		return v.Text(), v
	default:
		return fmt.Sprint(v), nil
	}
}

func applyParams(req *openai.ChatCompletionRequest, params GenerationParams) {
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	} else {
		req.Temperature = 0.7
	}
	if params.MaxTokens != nil {
		req.MaxTokens = *params.MaxTokens
	} else {
		req.MaxTokens = 1024
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}
}

var _ engine.Generator = (*Client)(nil)
