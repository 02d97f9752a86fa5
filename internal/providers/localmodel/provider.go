package localmodel

import (
	"context"
	"strings"
	"time"

	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
)

// DefaultModel is the model asked when none is configured
const DefaultModel = "gemma3:4b"

const promptTemplate = "Answer the following search query in a short paragraph. " +
	"If it is not a question, describe the topic briefly.\n\nQuery: "

// Config describes the inference endpoint
type Config struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration
	RateLimit float64
	UserAgent string
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Provider asks an Ollama-compatible /api/generate endpoint for a short
// answer to the query.
type Provider struct {
	client *httpclient.Client
	model  string
}

// NewProvider creates a local model provider
func NewProvider(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: cfg.UserAgent,
		}),
		model: cfg.Model,
	}
}

// Source identifies the provider
func (p *Provider) Source() types.Source {
	return types.Source{Kind: types.KindLocalModel}
}

// Fetch generates the answer text
func (p *Provider) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	var out generateResponse
	err := p.client.PostJSON(ctx, "/api/generate", generateRequest{
		Model:  p.model,
		Prompt: promptTemplate + q.Text,
		Stream: false,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, &httpclient.UpstreamError{Status: 200, Message: out.Error}
	}

	answer := strings.TrimSpace(out.Response)
	if answer == "" {
		return nil, nil
	}

	return []types.Item{types.NewText(types.TextItem{
		Title:    q.Text,
		Snippet:  answer,
		SiteName: p.model,
	})}, nil
}
