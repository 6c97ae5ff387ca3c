package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/legodom/lego/pkg/sfc"
)

// HTTP loads components from a web server.
type HTTP struct {
	// BaseURL is joined with "<tag>.lego" to form the request URL.
	BaseURL string

	Client  *http.Client
	MaxSize int64
}

// NewHTTP creates an HTTP loader for baseURL with a 10 second client
// timeout.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		MaxSize: DefaultMaxSize,
	}
}

// Load fetches BaseURL/<tag>.lego.
func (h *HTTP) Load(ctx context.Context, tag string) (string, error) {
	u, err := url.JoinPath(h.BaseURL, tag+sfc.Ext)
	if err != nil {
		return "", fmt.Errorf("loader: %w", err)
	}
	return h.Fetch(ctx, u)
}

// Fetch GETs rawURL. Relative URLs are resolved against BaseURL. A 404
// yields "" and a nil error.
func (h *HTTP) Fetch(ctx context.Context, rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") && h.BaseURL != "" {
		base, err := url.Parse(h.BaseURL)
		if err != nil {
			return "", fmt.Errorf("loader: %w", err)
		}
		ref, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("loader: %w", err)
		}
		rawURL = base.ResolveReference(ref).String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("loader: %w", err)
	}
	req.Header.Set("Accept", "text/plain, text/html;q=0.9, */*;q=0.1")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("loader: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("loader: fetch %s: %s", rawURL, resp.Status)
	}
	limit := h.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	return readLimited(resp.Body, limit)
}
