// Package vision is a client of the Google Cloud Vision annotate API
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
)

const (
	Name           = "Google Vision"
	defaultBaseURL = "https://vision.googleapis.com"
	annotatePath   = "/v1/images:annotate"
	maxResults     = 10

	FeatureLabels          = "LABEL_DETECTION"
	FeatureObjects         = "OBJECT_LOCALIZATION"
	FeatureImageProperties = "IMAGE_PROPERTIES"
)

// DefaultFeatures are requested when the caller names none.
var DefaultFeatures = []string{FeatureLabels, FeatureObjects}

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

type imageSource struct {
	ImageURI string `json:"imageUri"`
}

type image struct {
	Source  *imageSource `json:"source,omitempty"`
	Content string       `json:"content,omitempty"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateRequest struct {
	Image    image     `json:"image"`
	Features []feature `json:"features"`
}

type annotateBatch struct {
	Requests []annotateRequest `json:"requests"`
}

// Annotation - ответ по одной картинке, массивы отдаем как есть
type Annotation struct {
	Labels  json.RawMessage `json:"labelAnnotations"`
	Objects json.RawMessage `json:"localizedObjectAnnotations"`
	Text    json.RawMessage `json:"textAnnotations"`
	Faces   json.RawMessage `json:"faceAnnotations"`
	Raw     json.RawMessage `json:"-"`
}

type annotateResponse struct {
	Responses []json.RawMessage `json:"responses"`
}

// Annotate runs the requested features over one image, referenced by URL or inline base64.
func (c *Client) Annotate(ctx context.Context, img model.ImageReference, features []string) (*Annotation, error) {
	req := annotateRequest{Features: make([]feature, 0, len(features))}
	if img.URL != "" {
		req.Image.Source = &imageSource{ImageURI: img.URL}
	} else {
		req.Image.Content = provider.StripDataURL(img.Base64)
	}
	for _, f := range features {
		fr := feature{Type: f}
		if f != FeatureImageProperties {
			fr.MaxResults = maxResults
		}
		req.Features = append(req.Features, fr)
	}

	payload, err := json.Marshal(annotateBatch{Requests: []annotateRequest{req}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", Name, err)
	}

	endpoint := c.baseURL + annotatePath + "?key=" + url.QueryEscape(c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", Name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	if !provider.IsOK(resp) {
		return nil, provider.ReadError(Name, resp)
	}

	var batch annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", Name, err)
	}

	res := &Annotation{}
	if len(batch.Responses) > 0 {
		res.Raw = batch.Responses[0]
		if err := json.Unmarshal(res.Raw, res); err != nil {
			return nil, fmt.Errorf("failed to decode %s annotation: %w", Name, err)
		}
	}
	return res, nil
}
