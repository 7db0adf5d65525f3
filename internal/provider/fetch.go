package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxFetchBytes = 25 << 20

// Fetch downloads a remote image, returning its bytes and content type.
func Fetch(ctx context.Context, client Doer, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", Transport("image host", err)
	}
	defer DrainClose(resp.Body)

	if !IsOK(resp) {
		return nil, "", ReadError("image host", resp)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err)
	}

	ctype := resp.Header.Get("Content-Type")
	if ctype == "" {
		ctype = "image/jpeg"
	}
	return b, ctype, nil
}

// ContentLength probes a URL with HEAD; -1 means the size is unknown.
func ContentLength(ctx context.Context, client Doer, target string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return -1, fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return -1, Transport("probe", err)
	}
	defer DrainClose(resp.Body)

	if !IsOK(resp) {
		return -1, fmt.Errorf("probe of %s returned %d", target, resp.StatusCode)
	}
	return resp.ContentLength, nil
}
