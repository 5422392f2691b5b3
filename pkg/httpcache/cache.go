// Package httpcache caches successful GET responses in memory.
package httpcache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maypok86/otter/v2"
)

// Entry is a cached response body.
type Entry struct {
	ExpiresAt   time.Time
	ContentType string
	Data        []byte
}

// Cache is a size-bounded, TTL-expiring response cache.
type Cache struct {
	cache  *otter.Cache[string, Entry]
	logger *slog.Logger
	now    func() time.Time
	ttl    time.Duration
}

// New creates a cache holding at most maxEntries responses for ttl each.
func New(maxEntries int, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		cache: otter.Must(&otter.Options[string, Entry]{
			MaximumSize:      maxEntries,
			ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
		}),
		logger: logger,
		now:    time.Now,
		ttl:    ttl,
	}
}

func key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get returns the cached entry for url.
func (c *Cache) Get(url string) (Entry, bool) {
	k := key(url)
	entry, found := c.cache.GetIfPresent(k)
	if !found {
		c.logger.Debug("cache miss", "url", url)
		return Entry{}, false
	}
	// Otter expires lazily; drop entries past their deadline.
	if c.now().After(entry.ExpiresAt) {
		c.logger.Debug("cache miss", "url", url, "reason", "expired", "expired_at", entry.ExpiresAt)
		c.cache.Invalidate(k)
		return Entry{}, false
	}
	return entry, true
}

// Set stores a response body for url.
func (c *Cache) Set(url, contentType string, data []byte) {
	entry := Entry{Data: data, ContentType: contentType, ExpiresAt: c.now().Add(c.ttl)}
	c.cache.Set(key(url), entry)
	c.logger.Debug("cache set", "url", url, "expires_at", entry.ExpiresAt, "size", len(data))
}

// Len returns the approximate number of cached responses.
func (c *Cache) Len() int {
	return c.cache.EstimatedSize()
}

// HTTPClient interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps an HTTP client, answering repeated GETs from the cache.
type Client struct {
	cache      *Cache
	httpClient HTTPClient
	logger     *slog.Logger
}

// NewClient creates a caching client. A nil cache disables caching.
func NewClient(cache *Cache, httpClient HTTPClient, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cache: cache, httpClient: httpClient, logger: logger}
}

// Do performs req, serving GETs from the cache when possible. Only 200
// responses are cached.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.cache == nil || req.Method != http.MethodGet {
		return c.httpClient.Do(req)
	}

	url := req.URL.String()
	if entry, ok := c.cache.Get(url); ok {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(bytes.NewReader(entry.Data)),
			Header:     make(http.Header),
			Request:    req,
		}
		resp.Header.Set("X-From-Cache", "true")
		if entry.ContentType != "" {
			resp.Header.Set("Content-Type", entry.ContentType)
		}
		return resp, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.Debug("failed to close response body", "error", closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.cache.Set(url, resp.Header.Get("Content-Type"), body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
