package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/talentmatch/talentmatch/internal/utils"
)

const (
	defaultModel          = "gemini-2.5-flash"
	defaultEmbeddingModel = "gemini-embedding-001"

	retryBaseDelay = time.Second
)

// Client wraps the Google GenAI client for the two calls the provider needs:
// text generation and text embedding. Failed calls are retried with a linear
// backoff up to the configured attempt count.
type Client struct {
	client         *genai.Client
	modelName      string
	embeddingModel string
	maxRetries     int
	logger         *zap.Logger
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model, embeddingModel string, maxRetries int, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if embeddingModel = strings.TrimSpace(embeddingModel); embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		client:         client,
		modelName:      model,
		embeddingModel: embeddingModel,
		maxRetries:     maxRetries,
		logger:         logger,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the concatenated
// textual response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var output string
	err := c.withRetry(ctx, "generate_content", func() error {
		resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), nil)
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}

		var builder strings.Builder
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				text := strings.TrimSpace(part.Text)
				if text == "" {
					continue
				}
				if builder.Len() > 0 {
					builder.WriteString("\n")
				}
				builder.WriteString(text)
			}
		}

		output = strings.TrimSpace(builder.String())
		if output == "" {
			return errors.New("gemini api returned empty response")
		}
		return nil
	})

	return output, err
}

// EmbedText returns the embedding vector for the text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	var values []float32
	err := c.withRetry(ctx, "embed_content", func() error {
		resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
		if err != nil {
			return fmt.Errorf("embed content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
			return errors.New("gemini api returned empty embedding")
		}
		values = resp.Embeddings[0].Values
		return nil
	})

	return values, err
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= c.maxRetries {
			return err
		}

		delay := time.Duration(attempt+1) * retryBaseDelay
		c.logger.Debug("retrying gemini call",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if werr := utils.WaitFor(ctx, delay); werr != nil {
			return werr
		}
	}
}
