// Package cdn fetches the icon catalog and icon documents over HTTP.
package cdn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hpungsan/sicon/internal/errors"
)

// Response body limits.
const (
	MaxCatalogBytes = 64 << 20
	MaxIconBytes    = 4 << 20
)

// UserAgent is sent with every request.
const UserAgent = "sicon (+https://github.com/hpungsan/sicon)"

// Client talks to the catalog host and the icon CDN.
type Client struct {
	httpClient *http.Client
	dataURL    string
	cdnURL     string
}

// NewClient creates a Client. A zero timeout means no client-side timeout.
func NewClient(dataURL, cdnURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		dataURL:    dataURL,
		cdnURL:     strings.TrimRight(cdnURL, "/"),
	}
}

// IconURL returns the CDN URL for slug, with the color segment when hex is set.
func (c *Client) IconURL(slug, hex string) string {
	u := c.cdnURL + "/" + url.PathEscape(slug)
	if hex != "" {
		u += "/" + url.PathEscape(strings.TrimPrefix(hex, "#"))
	}
	return u
}

// FetchCatalog downloads the raw catalog document.
func (c *Client) FetchCatalog(ctx context.Context) ([]byte, error) {
	body, status, err := c.get(ctx, c.dataURL, MaxCatalogBytes)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.NewHTTPStatus(c.dataURL, status)
	}
	return body, nil
}

// FetchSVG downloads the vector document for slug, recolored when hex is set.
// A 404 maps to a not-found error for the slug.
func (c *Client) FetchSVG(ctx context.Context, slug, hex string) ([]byte, error) {
	target := c.IconURL(slug, hex)
	body, status, err := c.get(ctx, target, MaxIconBytes)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, errors.NewIconNotFound(slug)
	case status < 200 || status > 299:
		return nil, errors.NewHTTPStatus(target, status)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, target string, limit int64) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, errors.NewTransport(target, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.NewTransport(target, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, res.StatusCode, errors.NewTransport(target, fmt.Errorf("read response body: %w", err))
	}
	if int64(len(body)) > limit {
		return nil, res.StatusCode, errors.NewTransport(target, fmt.Errorf("response exceeds %d bytes", limit))
	}
	return body, res.StatusCode, nil
}
