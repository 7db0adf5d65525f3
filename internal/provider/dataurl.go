package provider

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrNotDataURL = errors.New("not a base64 data URL")

// DataURL - разобранный data:<mime>;base64,<payload>
type DataURL struct {
	MIME    string
	Payload string
}

// ParseDataURL accepts a full data-URL or a bare base64 payload (mime then defaults to image/png).
func ParseDataURL(s string) (DataURL, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DataURL{}, ErrNotDataURL
	}

	if !strings.HasPrefix(s, "data:") {
		return DataURL{MIME: "image/png", Payload: s}, nil
	}

	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return DataURL{}, ErrNotDataURL
	}

	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if mime == "" {
		mime = "image/png"
	}
	return DataURL{MIME: mime, Payload: payload}, nil
}

func (d DataURL) String() string {
	return fmt.Sprintf("data:%s;base64,%s", d.MIME, d.Payload)
}

func (d DataURL) Decode() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return b, nil
}

// EncodeDataURL wraps raw bytes into a data-URL.
func EncodeDataURL(mime string, b []byte) string {
	return DataURL{MIME: mime, Payload: base64.StdEncoding.EncodeToString(b)}.String()
}

// StripDataURL returns only the base64 payload.
func StripDataURL(s string) string {
	d, err := ParseDataURL(s)
	if err != nil {
		return s
	}
	return d.Payload
}
