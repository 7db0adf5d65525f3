// Package model provides data-structs for internal app-usage
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type (
	JobStatus  string
	JobState   string
	Severity   string
	ResultKind string
)

const (
	JobPending   JobStatus = "PENDING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
)

const (
	StateCreated   JobState = "CREATED"
	StatePolling   JobState = "POLLING"
	StateSucceeded JobState = "SUCCEEDED"
	StateFailed    JobState = "FAILED"
	StateExhausted JobState = "EXHAUSTED"
)

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

//---------------------

// ImageReference - либо публичный URL, либо data-URL с base64
type ImageReference struct {
	URL    string `json:"imageUrl,omitempty"`
	Base64 string `json:"imageBase64,omitempty"`
}

func (r ImageReference) IsEmpty() bool {
	return strings.TrimSpace(r.URL) == "" && strings.TrimSpace(r.Base64) == ""
}

// Source returns URL when present, otherwise the data-URL
func (r ImageReference) Source() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Base64
}

func (r ImageReference) IsInline() bool {
	return r.URL == "" && r.Base64 != ""
}

//---------------------

// JobHandle - идентификатор задачи у вендора и счетчик попыток опроса
type JobHandle struct {
	ID       string
	Attempts int
}

//---------------------

// AssetMetadata - сырые метаданные ассета от CDN/вендора, вход нормализатора
type AssetMetadata struct {
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Format       string          `json:"format"`
	Bytes        int64           `json:"bytes"`
	Quality      QualityAnalysis `json:"quality_analysis"`
	Colors       []ColorShare    `json:"colors"`
	ResourceType string          `json:"resource_type,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`
	SecureURL    string          `json:"secure_url,omitempty"`
}

type QualityAnalysis struct {
	Focus *float64 `json:"focus,omitempty"`
	Noise *float64 `json:"noise,omitempty"`
}

// ColorShare - пара ["#RRGGBB", процент] как ее отдает CDN
type ColorShare struct {
	Hex   string
	Share float64
}

func (c *ColorShare) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("color entry is not an array: %w", err)
	}
	// цвета только информационные: кривой элемент пары остается нулевым, а не роняет разбор всего ассета
	if len(pair) > 0 {
		_ = json.Unmarshal(pair[0], &c.Hex)
	}
	if len(pair) > 1 {
		_ = json.Unmarshal(pair[1], &c.Share)
	}
	return nil
}

func (c ColorShare) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Hex, c.Share})
}

//---------------------

type Issue struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

type ComplianceCheck struct {
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

type Compliance struct {
	Passed bool              `json:"passed"`
	Checks []ComplianceCheck `json:"checks"`
}

type Quality struct {
	Score    float64          `json:"score"`
	Issues   []Issue          `json:"issues"`
	Analysis *QualityAnalysis `json:"nativeAnalysis,omitempty"`
}

type ResultMetadata struct {
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Format       string       `json:"format"`
	FileSize     int64        `json:"file_size"`
	AspectRatio  string       `json:"aspect_ratio"`
	Colors       []ColorShare `json:"colors,omitempty"`
	ResourceType string       `json:"resource_type,omitempty"`
	CreatedAt    string       `json:"created_at,omitempty"`
	URL          string       `json:"url,omitempty"`
}

// NormalizedResult - единый результат, не зависящий от вендора
type NormalizedResult struct {
	ResultURL  *string        `json:"resultUrl"`
	Quality    Quality        `json:"quality"`
	Compliance Compliance     `json:"compliance"`
	Metadata   ResultMetadata `json:"metadata"`
}

// ------------------

var (
	ErrCommon500         error = errors.New("failed to process image")                            // 500
	ErrEmptyImage        error = errors.New("image URL or base64 is required")                    // 400
	ErrIncorrectURL      error = errors.New("invalid URL format provided")                        // 400
	ErrIncorrectBase64   error = errors.New("expected base64 data URL starting with data:image/") // 400
	ErrEmptyOperation    error = errors.New("operation is required")                              // 400
	ErrUnknownOperation  error = errors.New("unknown operation")                                  // 400
	ErrMissingDimensions error = errors.New("width or height is required for resize")             // 400
	ErrEmptyTaskID       error = errors.New("task ID is required")                                // 400
	ErrNotConfigured     error = errors.New("API credentials not configured")                     // 500
	ErrAssetNotFound     error = errors.New("could not retrieve image data")                      // 404
	ErrVendorTimeout     error = errors.New("request timeout")                                    // 500, user-actionable
	ErrJobFailed         error = errors.New("processing failed")                                  // 500
	ErrNoResultURL       error = errors.New("vendor did not return a processed image URL")        // 500
	ErrUnsupportedFormat error = errors.New("unsupported image format")                           // 400
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	WEBP = "image/webp"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	WEBP: ".webp",
}

// ConfigError tells which vendor setting is absent
type ConfigError struct {
	Vendor string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %s", e.Vendor, ErrNotConfigured.Error())
}

func (e *ConfigError) Unwrap() error { return ErrNotConfigured }

// UpstreamError - вендор ответил неуспешным статусом
type UpstreamError struct {
	Vendor  string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error: %d", e.Vendor, e.Status)
	}
	return fmt.Sprintf("%s API error: %s", e.Vendor, e.Message)
}
