// Package claid is a client of the Claid.ai image edit API
package claid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/UnendingLoop/ImageLab/internal/operations"
	"github.com/UnendingLoop/ImageLab/internal/provider"
)

const (
	Name           = "Claid"
	defaultBaseURL = "https://api.claid.ai"
	editPath       = "/v1/image/edit"
)

type Client struct {
	apiKey  string
	baseURL string
	http    provider.Doer
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(d provider.Doer) Option {
	return func(c *Client) { c.http = d }
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{apiKey: apiKey, baseURL: defaultBaseURL, http: provider.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ImageInfo struct {
	TmpURL string  `json:"tmp_url"`
	Format string  `json:"format"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	MPs    float64 `json:"mps"`
}

// EditResult - data-блок ответа вендора
type EditResult struct {
	Input  ImageInfo `json:"input"`
	Output ImageInfo `json:"output"`
}

type editResponse struct {
	Data EditResult `json:"data"`
}

// Edit posts an already sanitized payload.
func (c *Client) Edit(ctx context.Context, payload operations.Payload) (*EditResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+editPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", Name, err)
	}
	if !provider.IsOK(resp) {
		return nil, provider.NewUpstreamError(Name, resp.StatusCode, raw)
	}

	var parsed editResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w - %s", Name, err, provider.Excerpt(string(raw)))
	}
	return &parsed.Data, nil
}
