// Package provider holds HTTP plumbing shared by the third-party image API clients
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UnendingLoop/ImageLab/internal/model"
)

const excerptLen = 200

// Doer - минимальный контракт http-клиента, подменяется в тестах
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultClient is shared by all vendor clients unless WithHTTPClient overrides it.
var DefaultClient Doer = &http.Client{Timeout: 2 * time.Minute}

// ReadError builds an UpstreamError from a non-2xx response, the caller still owns the body.
func ReadError(vendorName string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return NewUpstreamError(vendorName, resp.StatusCode, body)
}

// NewUpstreamError extracts the vendor's own error text when the body is JSON, else keeps a raw excerpt.
func NewUpstreamError(vendorName string, status int, body []byte) *model.UpstreamError {
	ue := &model.UpstreamError{Vendor: vendorName, Status: status}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		text := strings.TrimSpace(string(body))
		if text != "" {
			ue.Message = fmt.Sprintf("%d - %s", status, Excerpt(text))
		}
		return ue
	}

	ue.Message = messageFromJSON(parsed)
	if details, ok := parsed["error_details"].(map[string]any); ok && len(details) > 0 {
		ue.Message += " - " + flattenDetails(details)
	}
	return ue
}

func messageFromJSON(parsed map[string]any) string {
	for _, key := range []string{"error_message", "detail", "message", "error", "errors"} {
		switch v := parsed[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			// {"error": {"message": "..."}} - формат google
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
			if title, ok := v["title"].(string); ok && title != "" {
				return title
			}
		case []any:
			// remove.bg: {"errors": [{"title": "..."}]}
			for _, item := range v {
				switch it := item.(type) {
				case string:
					if it != "" {
						return it
					}
				case map[string]any:
					if title, ok := it["title"].(string); ok && title != "" {
						return title
					}
				}
			}
		}
	}
	return ""
}

func flattenDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := details[k].(type) {
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(items, ", ")))
		default:
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	return strings.Join(parts, "; ")
}

// Excerpt truncates raw vendor text for error messages on a rune boundary.
func Excerpt(s string) string {
	if len(s) <= excerptLen {
		return s
	}
	cut := excerptLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Transport wraps a failed Do: timeouts become ErrVendorTimeout, anything else stays wrapped.
func Transport(vendorName string, err error) error {
	if IsTimeout(err) {
		return fmt.Errorf("%s: %w", vendorName, model.ErrVendorTimeout)
	}
	return fmt.Errorf("%s request failed: %w", vendorName, err)
}

func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// DrainClose reads the rest of the body so the connection can be reused.
func DrainClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}

// IsOK - статус 2xx
func IsOK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
