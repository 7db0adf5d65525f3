// Package operations turns loosely shaped client edit options into the strict payload of the image-edit vendor
package operations

import (
	"encoding/json"
)

const (
	DefaultOutputFormat = "jpeg"
	defaultResizeSide   = 1200
	defaultResizeFit    = "bounds"
)

// Operations - типизированный набор правок, который уходит вендору
type Operations struct {
	Adjustments  *Adjustments  `json:"adjustments,omitempty"`
	Restorations *Restorations `json:"restorations,omitempty"`
	Background   *Background   `json:"background,omitempty"`
	Resizing     *Resizing     `json:"resizing,omitempty"`
	Padding      string        `json:"padding,omitempty"`
}

// IsEmpty reports whether no top-level key would be serialized.
func (o Operations) IsEmpty() bool {
	return o.Adjustments == nil &&
		o.Restorations == nil &&
		o.Background == nil &&
		o.Resizing == nil &&
		o.Padding == ""
}

// DefaultOperations - bounds-fit resize to 1200x1200
func DefaultOperations() Operations {
	return Operations{
		Resizing: &Resizing{
			Width:  &Dimension{Pixels: defaultResizeSide},
			Height: &Dimension{Pixels: defaultResizeSide},
			Fit:    &Fit{Mode: defaultResizeFit},
		},
	}
}

// Adjustments are always integers once sanitized.
type Adjustments struct {
	HDR        int `json:"hdr"`
	Exposure   int `json:"exposure"`
	Saturation int `json:"saturation"`
	Contrast   int `json:"contrast"`
	Sharpness  int `json:"sharpness"`
}

type Restorations struct {
	Decompress *string `json:"decompress,omitempty"`
	Polish     *bool   `json:"polish,omitempty"`
	Upscale    *string `json:"upscale,omitempty"`
}

type Background struct {
	Remove *Remove `json:"remove,omitempty"`
	Color  string  `json:"color,omitempty"`
}

// Remove is serialized either as a bare boolean or as an object with one selector.
type Remove struct {
	Enabled   bool
	Category  string
	Selective *Selective
	Clipping  *bool
}

type Selective struct {
	ObjectToKeep string `json:"object_to_keep,omitempty"`
}

func (r Remove) isObject() bool {
	return r.Category != "" || r.Selective != nil
}

func (r Remove) MarshalJSON() ([]byte, error) {
	if !r.isObject() {
		return json.Marshal(r.Enabled)
	}
	return json.Marshal(struct {
		Category  string     `json:"category,omitempty"`
		Selective *Selective `json:"selective,omitempty"`
		Clipping  *bool      `json:"clipping,omitempty"`
	}{r.Category, r.Selective, r.Clipping})
}

type Resizing struct {
	Width  *Dimension `json:"width,omitempty"`
	Height *Dimension `json:"height,omitempty"`
	Fit    *Fit       `json:"fit,omitempty"`
}

// Dimension is a pixel count or a relative value such as "50%".
type Dimension struct {
	Pixels   int
	Relative string
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Relative != "" {
		return json.Marshal(d.Relative)
	}
	return json.Marshal(d.Pixels)
}

// Fit is either a named mode ("bounds", "cover", ...) or an object {type, crop}.
type Fit struct {
	Mode string
	Type string
	Crop string
}

func (f Fit) MarshalJSON() ([]byte, error) {
	if f.Type == "" {
		return json.Marshal(f.Mode)
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Crop string `json:"crop,omitempty"`
	}{f.Type, f.Crop})
}

//---------------------

type Output struct {
	Format OutputFormat `json:"format"`
}

// OutputFormat is a plain format name unless compression settings are attached.
type OutputFormat struct {
	Type        string
	Compression *Compression
}

type Compression struct {
	Type    string `json:"type,omitempty"`
	Quality *int   `json:"quality,omitempty"`
}

func (f OutputFormat) MarshalJSON() ([]byte, error) {
	if f.Compression == nil {
		return json.Marshal(f.Type)
	}
	return json.Marshal(struct {
		Type        string       `json:"type"`
		Compression *Compression `json:"compression"`
	}{f.Type, f.Compression})
}

// Payload - итоговое тело запроса к вендору
type Payload struct {
	Input      string     `json:"input"`
	Operations Operations `json:"operations"`
	Output     Output     `json:"output"`
}
