package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

type VisionRequest struct {
	ImageReference
	Features []string `json:"features"`
}

// EnhanceRequest - operations/output приходят как есть и чистятся санитайзером
type EnhanceRequest struct {
	ImageReference
	Operations map[string]any `json:"operations"`
	Output     map[string]any `json:"output"`
}

type ResizeBox struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CDNOperations - правки для URL доставки CDN
type CDNOperations struct {
	Resize     *ResizeBox `json:"resize"`
	Crop       bool       `json:"crop"`
	Quality    FlexString `json:"quality"`
	Format     string     `json:"format"`
	Background string     `json:"background"`
}

type ValidateRequest struct {
	ImageReference
	Operations CDNOperations `json:"operations"`
}

const (
	CloudResize    = "resize"
	CloudCompress  = "compress"
	CloudLifestyle = "lifestyle"
)

type CloudOptions struct {
	Width               *int   `json:"width"`
	Height              *int   `json:"height"`
	MaintainAspectRatio *bool  `json:"maintainAspectRatio"`
	Quality             *int   `json:"quality"`
	Format              string `json:"format"`
	Prompt              string `json:"prompt"`
	Style               string `json:"style"`
}

type CloudOperationRequest struct {
	ImageReference
	Operation string       `json:"operation"`
	Options   CloudOptions `json:"options"`
}

// FlexString принимает и строку, и число: "auto:best" или 80
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
