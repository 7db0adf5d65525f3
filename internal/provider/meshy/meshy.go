// Package meshy is a client of the Meshy image-to-3D API
package meshy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/poller"
	"github.com/UnendingLoop/ImageLab/internal/provider"
)

const (
	Name           = "Meshy"
	defaultBaseURL = "https://api.meshy.ai"
	imageTo3DPath  = "/openapi/v1/image-to-3d"
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

type createRequest struct {
	ImageURL      string `json:"image_url"`
	EnablePBR     bool   `json:"enable_pbr"`
	ShouldRemesh  bool   `json:"should_remesh"`
	ShouldTexture bool   `json:"should_texture"`
}

type createResponse struct {
	Result string `json:"result"`
}

type taskResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	ModelURLs struct {
		GLB  string `json:"glb"`
		FBX  string `json:"fbx"`
		OBJ  string `json:"obj"`
		USDZ string `json:"usdz"`
	} `json:"model_urls"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// CreateTask submits the image and returns the vendor task id.
func (c *Client) CreateTask(ctx context.Context, imageSource string) (string, error) {
	payload, err := json.Marshal(createRequest{
		ImageURL:      imageSource,
		EnablePBR:     true,
		ShouldRemesh:  true,
		ShouldTexture: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s request: %w", Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+imageTo3DPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build %s request: %w", Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	if !provider.IsOK(resp) {
		return "", provider.ReadError(Name, resp)
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode %s response: %w", Name, err)
	}
	if created.Result == "" {
		return "", &model.UpstreamError{Vendor: Name, Status: resp.StatusCode, Message: "no task id returned"}
	}
	return created.Result, nil
}

// JobStatus is a single status request, it never loops.
func (c *Client) JobStatus(ctx context.Context, taskID string) (*poller.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+imageTo3DPath+"/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	if !provider.IsOK(resp) {
		return nil, provider.ReadError(Name, resp)
	}

	var task taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode %s task: %w", Name, err)
	}

	st := &poller.Status{Status: classify(task.Status)}
	if st.Status == model.JobSucceeded {
		st.AssetURL = task.ModelURLs.GLB
		st.ThumbnailURL = task.ThumbnailURL
	}
	return st, nil
}

// classify - все кроме SUCCEEDED/FAILED считаем незавершенным
func classify(status string) model.JobStatus {
	switch status {
	case "SUCCEEDED":
		return model.JobSucceeded
	case "FAILED":
		return model.JobFailed
	default:
		return model.JobPending
	}
}
