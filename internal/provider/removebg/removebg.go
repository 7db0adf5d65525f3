// Package removebg is a client of the Remove.bg background removal API
package removebg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
)

const (
	Name           = "Remove.bg"
	defaultBaseURL = "https://api.remove.bg"
	removePath     = "/v1.0/removebg"
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

// RemoveBackground returns the cut-out as PNG bytes.
func (c *Client) RemoveBackground(ctx context.Context, img model.ImageReference) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	// URL приоритетнее base64
	if img.URL != "" {
		if err := form.WriteField("image_url", img.URL); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	} else {
		if err := form.WriteField("image_file_b64", provider.StripDataURL(img.Base64)); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := form.WriteField("size", "auto"); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+removePath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", Name, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	if !provider.IsOK(resp) {
		return nil, provider.ReadError(Name, resp)
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", Name, err)
	}
	return png, nil
}
