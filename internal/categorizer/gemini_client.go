package categorizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fjacquet/budget-csv/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned when the Gemini client has no API key.
var ErrMissingAPIKey = errors.New("gemini API key not set")

// GeminiClient implements the AIClient interface for interacting with the Google Gemini API.
// The underlying client is created on first use.
type GeminiClient struct {
	apiKey    string
	modelName string
	timeout   time.Duration
	logger    logging.Logger

	mu     sync.Mutex
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new instance of GeminiClient.
func NewGeminiClient(apiKey, modelName string, timeout time.Duration, logger logging.Logger) *GeminiClient {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		timeout:   timeout,
		logger:    logging.OrDefault(logger),
	}
}

func (c *GeminiClient) ensureModel(ctx context.Context) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil {
		return c.model, nil
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	c.model = client.GenerativeModel(c.modelName)
	return c.model, nil
}

// Categorize sends the transaction to Gemini and returns the category it
// picked, or "" when the reply names none of the offered categories.
func (c *GeminiClient) Categorize(ctx context.Context, tx Transaction, categories []string) (string, error) {
	model, err := c.ensureModel(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(tx, categories)))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	category, reason := extractCategoryFromResponse(responseText, categories)

	c.logger.Debug("Gemini classified transaction",
		logging.Field{Key: "name", Value: tx.SimplifiedName},
		logging.Field{Key: logging.FieldCategory, Value: category},
		logging.Field{Key: logging.FieldReason, Value: reason})
	return category, nil
}

// Close releases the underlying client, if one was created.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	c.model = nil
	return err
}
