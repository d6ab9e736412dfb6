package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// Client talks to an OpenAI-compatible API. DeepSeek is the default
// provider; any endpoint speaking the same protocol works via the
// configured base URL. The API key comes from the environment only.
type Client struct {
	api            *openai.Client
	model          string
	embeddingModel string
}

// NewClient creates a lab model client from the lab configuration.
func NewClient(cfg *entities.LabConfig) (*Client, error) {
	apiKey := cfg.GetAPIKey()
	if apiKey == "" {
		return nil, errors.New("PROMPTDECK_LAB_API_KEY is not set")
	}

	apiCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:            openai.NewClientWithConfig(apiCfg),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// Chat sends a system prompt and user text, returning the model reply.
func (c *Client) Chat(ctx context.Context, systemPrompt, userText string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for a text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}

	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("embedding returned %d vectors, expected 1", len(resp.Data))
	}

	return resp.Data[0].Embedding, nil
}

// Ensure Client implements the lab's model ports
var (
	_ ports.ChatClient = (*Client)(nil)
	_ ports.Embedder   = (*Client)(nil)
)
