package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"onboarding-assistant/internal/config"
)

// OpenAIClient is the alternate provider selected by AI_PROVIDER=openai.
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
}

func NewOpenAIClient(cfg *config.Config) (*OpenAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIClient{
		client:         openai.NewClient(cfg.OpenAIAPIKey),
		chatModel:      cfg.OpenAIModel,
		embeddingModel: openai.EmbeddingModel(cfg.OpenAIEmbeddingsModel),
		timeout:        cfg.ProviderTimeout,
	}, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, classify("embed", err)
	}
	if len(resp.Data) == 0 {
		return nil, classify("embed", fmt.Errorf("no embeddings returned"))
	}

	return resp.Data[0].Embedding, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", classify("generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", classify("generate", fmt.Errorf("no choices in response"))
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Close() error { return nil }
