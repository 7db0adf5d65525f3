// Package cloudinary is a client of the Cloudinary upload, Admin and delivery APIs
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
)

const (
	Name               = "Cloudinary"
	defaultAPIURL      = "https://api.cloudinary.com"
	defaultDeliveryURL = "https://res.cloudinary.com"
)

var publicIDPattern = regexp.MustCompile(`upload/(?:v\d+/)?([^.]+)`)

type Credentials struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
}

type Client struct {
	creds       Credentials
	apiURL      string
	deliveryURL string
	http        provider.Doer
	now         func() time.Time
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.apiURL = u }
}

func WithDeliveryURL(u string) Option {
	return func(c *Client) { c.deliveryURL = u }
}

func WithHTTPClient(d provider.Doer) Option {
	return func(c *Client) { c.http = d }
}

func New(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:       creds,
		apiURL:      defaultAPIURL,
		deliveryURL: defaultDeliveryURL,
		http:        provider.DefaultClient,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanUploadUnsigned - есть cloud name и upload preset
func (c *Client) CanUploadUnsigned() bool {
	return c.creds.CloudName != "" && c.creds.UploadPreset != ""
}

// CanAdmin - есть полный набор ключей для Admin API и подписанной загрузки
func (c *Client) CanAdmin() bool {
	return c.creds.CloudName != "" && c.creds.APIKey != "" && c.creds.APISecret != ""
}

type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// UploadUnsigned uploads a data-URL or remote URL with the configured upload preset.
func (c *Client) UploadUnsigned(ctx context.Context, file string) (*UploadResult, error) {
	return c.upload(ctx, map[string]string{
		"file":          file,
		"upload_preset": c.creds.UploadPreset,
	})
}

// UploadSigned uploads with api key and a sha256 signature instead of a preset.
func (c *Client) UploadSigned(ctx context.Context, file string) (*UploadResult, error) {
	ts := strconv.FormatInt(c.now().Unix(), 10)
	return c.upload(ctx, map[string]string{
		"file":                file,
		"timestamp":           ts,
		"api_key":             c.creds.APIKey,
		"signature":           c.sign("timestamp=" + ts),
		"signature_algorithm": "sha256",
	})
}

func (c *Client) sign(params string) string {
	sum := sha256.Sum256([]byte(params + c.creds.APISecret))
	return hex.EncodeToString(sum[:])
}

func (c *Client) upload(ctx context.Context, fields map[string]string) (*UploadResult, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for _, k := range []string{"file", "upload_preset", "timestamp", "api_key", "signature", "signature_algorithm"} {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if err := form.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to close upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.apiURL, url.PathEscape(c.creds.CloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s upload request: %w", Name, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	if !provider.IsOK(resp) {
		return nil, provider.ReadError(Name, resp)
	}

	var res UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode %s upload response: %w", Name, err)
	}
	if res.SecureURL == "" {
		return nil, &model.UpstreamError{Vendor: Name, Status: resp.StatusCode, Message: "upload returned no secure_url"}
	}
	return &res, nil
}

// Resource fetches asset metadata with colors and quality analysis from the Admin API.
// The raw JSON is returned alongside for debugging output.
func (c *Client) Resource(ctx context.Context, publicID string) (*model.AssetMetadata, json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v1_1/%s/resources/image/upload/%s?colors=true&image_metadata=true&quality_analysis=true",
		c.apiURL, url.PathEscape(c.creds.CloudName), escapePublicID(publicID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build %s resource request: %w", Name, err)
	}
	req.SetBasicAuth(c.creds.APIKey, c.creds.APISecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, provider.Transport(Name, err)
	}
	defer provider.DrainClose(resp.Body)

	if !provider.IsOK(resp) {
		return nil, nil, fmt.Errorf("%w: %w", model.ErrAssetNotFound, provider.ReadError(Name, resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s resource: %w", Name, err)
	}

	var meta model.AssetMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s resource: %w", Name, err)
	}
	return &meta, raw, nil
}

// escapePublicID keeps folder separators of the public id
func escapePublicID(id string) string {
	return strings.ReplaceAll(url.PathEscape(id), "%2F", "/")
}

// PublicIDFromURL extracts the public id from a Cloudinary delivery URL.
func PublicIDFromURL(imageURL string) (string, bool) {
	if !strings.Contains(imageURL, "cloudinary.com") {
		return "", false
	}
	m := publicIDPattern.FindStringSubmatch(imageURL)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// DeliveryURL - ссылка на ассет с цепочкой трансформаций
func (c *Client) DeliveryURL(publicID string, t Transformation) string {
	return fmt.Sprintf("%s/%s/image/upload/%s/%s", c.deliveryURL, c.creds.CloudName, t.String(), publicID)
}

// AttachmentURL turns a delivery URL into a direct-download one.
func AttachmentURL(secureURL string) string {
	return strings.Replace(secureURL, "/upload/", "/upload/fl_attachment/", 1)
}
