package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client fetches a care catalog published over HTTP
type Client struct {
	httpClient *http.Client
}

// NewClient creates a catalog client with a 30 second timeout
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads and decodes the catalog at url
func (c *Client) Fetch(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch care catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog server returned status %d: %s", resp.StatusCode, string(body))
	}

	cat, err := Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to load care catalog %s: %w", url, err)
	}

	slog.Info("Care catalog fetched", "url", url, "plants", cat.Len())
	return cat, nil
}

// Open loads the catalog from a local path or, for http(s) sources, from a URL
func Open(ctx context.Context, source string) (*Catalog, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewClient().Fetch(ctx, source)
	}
	return Load(source)
}
