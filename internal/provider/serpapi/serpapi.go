// Package serpapi is a client of the SerpAPI Google Lens visual search
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
)

const (
	Name           = "SerpAPI"
	defaultBaseURL = "https://serpapi.com"
	searchPath     = "/search.json"
	userAgent      = "Mozilla/5.0 (compatible; ProductRecognition/1.0)"

	// DefaultTimeout bounds the whole search request.
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    provider.Doer
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(d provider.Doer) Option {
	return func(c *Client) { c.http = d }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{apiKey: apiKey, baseURL: defaultBaseURL, timeout: DefaultTimeout, http: provider.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Price struct {
	Value          string  `json:"value"`
	ExtractedValue float64 `json:"extracted_value"`
	Currency       string  `json:"currency"`
}

type VisualMatch struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Thumbnail string `json:"thumbnail"`
	Price     *Price `json:"price,omitempty"`
}

type RelatedContent struct {
	Query string `json:"query"`
	Link  string `json:"link"`
}

type SearchMetadata struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// LensResult - нужная нам часть ответа google_lens
type LensResult struct {
	SearchMetadata   SearchMetadata   `json:"search_metadata"`
	VisualMatches    []VisualMatch    `json:"-"`
	VisualMatchesRaw json.RawMessage  `json:"visual_matches"`
	RelatedContent   []RelatedContent `json:"related_content"`
	Error            string           `json:"error"`
}

// Lens runs a Google Lens search over a public image URL.
func (c *Client) Lens(ctx context.Context, imageURL string) (*LensResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("engine", "google_lens")
	params.Set("api_key", c.apiKey)
	params.Set("url", imageURL)
	params.Set("hl", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", Name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if provider.IsTimeout(err) {
			return nil, fmt.Errorf("%s: %w", Name, model.ErrVendorTimeout)
		}
		return nil, fmt.Errorf("failed to read %s response: %w", Name, err)
	}

	if !provider.IsOK(resp) {
		return nil, classify(resp.StatusCode, raw)
	}

	var res LensResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &model.UpstreamError{Vendor: Name, Status: http.StatusBadGateway, Message: "invalid response: " + provider.Excerpt(string(raw))}
	}
	if res.Error != "" {
		return nil, classifyMessage(http.StatusBadGateway, res.Error)
	}
	if len(res.VisualMatchesRaw) > 0 {
		if err := json.Unmarshal(res.VisualMatchesRaw, &res.VisualMatches); err != nil {
			return nil, fmt.Errorf("failed to decode %s visual matches: %w", Name, err)
		}
	}
	return &res, nil
}

func classify(status int, raw []byte) error {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		return classifyMessage(status, parsed.Error)
	}

	text := string(raw)
	if strings.Contains(text, "Invalid API key") {
		return classifyMessage(status, "Invalid API key")
	}
	return &model.UpstreamError{Vendor: Name, Status: status, Message: fmt.Sprintf("request failed with status %d", status)}
}

// classifyMessage - ключ -> 401, квота/лимит -> 429
func classifyMessage(status int, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "invalid api_key"):
		status = http.StatusUnauthorized
	case strings.Contains(lower, "quota"), strings.Contains(lower, "limit"):
		status = http.StatusTooManyRequests
	}
	return &model.UpstreamError{Vendor: Name, Status: status, Message: msg}
}
