package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultSize is the widest landscape resolution DALL-E 3 offers.
const DefaultSize = openai.CreateImageSize1792x1024

type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// OpenAIClient generates images through the OpenAI Images API. Each
// Generate call is exactly one API request; there is no retry.
type OpenAIClient struct {
	client *openai.Client
	model  string
	token  string
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	token := strings.TrimSpace(opts.APIKey)
	cfg := openai.DefaultConfig(token)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		token:  token,
	}
}

// Model returns the configured image model.
func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*GeneratedImage, error) {
	if c == nil {
		return nil, errors.New("openai client not configured")
	}
	if c.token == "" {
		return nil, errors.New("openai: API key is missing")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("openai: prompt required")
	}
	size := req.Size
	if size == "" {
		size = DefaultSize
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           size,
		Quality:        openai.CreateImageQualityHD,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: create image: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai: empty response")
	}
	url := strings.TrimSpace(resp.Data[0].URL)
	if url == "" {
		return nil, errors.New("openai: missing image url")
	}
	return &GeneratedImage{URL: url, RevisedPrompt: resp.Data[0].RevisedPrompt}, nil
}
