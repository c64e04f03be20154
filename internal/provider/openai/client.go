package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	retry "github.com/sethvargo/go-retry"

	"docqa/internal/domain"
)

// Config configures the embedding and chat completion client. A non-empty
// AzureEndpoint switches the client to Azure OpenAI deployments, in which
// case EmbedModel and ChatModel name the deployments.
type Config struct {
	APIKey         string
	BaseURL        string
	AzureEndpoint  string
	EmbedModel     string
	ChatModel      string
	EmbedDimension int
	Timeout        time.Duration
}

// Client implements domain.Embedder and domain.Completer over the OpenAI
// API. Rate limits and server errors are retried with exponential backoff;
// terminal failures are wrapped so callers can tell which capability
// failed via errors.Is.
type Client struct {
	api        *openai.Client
	embedModel string
	chatModel  string
	dim        int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = string(openai.SmallEmbedding3)
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.EmbedDimension == 0 {
		cfg.EmbedDimension = 1536
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	var cc openai.ClientConfig
	if cfg.AzureEndpoint != "" {
		cc = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
	} else {
		cc = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			cc.BaseURL = cfg.BaseURL
		}
	}
	cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:        openai.NewClientWithConfig(cc),
		embedModel: cfg.EmbedModel,
		chatModel:  cfg.ChatModel,
		dim:        cfg.EmbedDimension,
	}, nil
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var out []float64
	err := retry.Do(ctx, newBackoff(), func(ctx context.Context) error {
		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.embedModel),
			Input: []string{text},
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Data) == 0 {
			return errors.New("no embedding data returned")
		}
		emb := resp.Data[0].Embedding
		out = make([]float64, len(emb))
		for i, v := range emb {
			out[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}
	return out, nil
}

// Dimension returns the configured embedding dimensionality.
func (c *Client) Dimension() int { return c.dim }

// Complete sends the prompt as a single user message and returns the
// model's reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := retry.Do(ctx, newBackoff(), func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.chatModel,
			Temperature: 0.2,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}
		out = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCompletionProvider, err)
	}
	return out, nil
}

// classify marks rate limits, server errors and transport failures as
// retryable; API errors like bad auth or an unknown model are terminal.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return retry.RetryableError(err)
		}
		return err
	}
	return retry.RetryableError(err)
}

func newBackoff() retry.Backoff {
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	return retry.WithMaxRetries(5, b)
}
