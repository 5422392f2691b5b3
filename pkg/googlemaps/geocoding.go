// Package googlemaps geocodes postal codes with the Google Geocoding API.
package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// DefaultBaseURL is the Geocoding API endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNoAPIKey is returned when geocoding is attempted without a key.
var ErrNoAPIKey = errors.New("google maps API key not configured")

// Location represents a geographic location with coordinates.
type Location struct {
	Latitude  float64
	Longitude float64
}

// HTTPClient interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles Google Maps API operations.
type Client struct {
	httpClient HTTPClient
	logger     *slog.Logger
	apiKey     string
	baseURL    string
	attempts   uint
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithAttempts bounds retries of failed requests.
func WithAttempts(n uint) Option {
	return func(c *Client) { c.attempts = max(n, 1) }
}

// NewClient creates a new Google Maps API client.
func NewClient(apiKey string, httpClient HTTPClient, logger *slog.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    DefaultBaseURL,
		attempts:   3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
		Types            []string `json:"types"`
		FormattedAddress string   `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// GeocodePostalCode converts a postal or zip code to coordinates.
func (c *Client) GeocodePostalCode(ctx context.Context, postalCode string) (*Location, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("components", "postal_code:"+strings.ToUpper(strings.TrimSpace(postalCode)))
	q.Set("key", c.apiKey)
	apiURL := c.baseURL + "?" + q.Encode()

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					c.logger.Debug("failed to close response body", "error", err)
				}
			}()
			if resp.StatusCode >= 500 {
				return fmt.Errorf("geocoding server error: %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("geocoding request failed: %d", resp.StatusCode))
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(c.attempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying geocoding request", "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Debug("geocoding JSON parse error", "postal_code", postalCode, "error", err)
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	if result.Status == "ZERO_RESULTS" {
		return nil, fmt.Errorf("no geocoding result for %s", postalCode)
	}
	if result.Status != "OK" || len(result.Results) == 0 {
		if result.ErrorMessage != "" {
			return nil, fmt.Errorf("geocoding failed for %s: %s: %s", postalCode, result.Status, result.ErrorMessage)
		}
		return nil, fmt.Errorf("geocoding failed for %s: %s", postalCode, result.Status)
	}

	first := result.Results[0]
	// A country-level match is too coarse to rank gyms by distance.
	if strings.EqualFold(first.Geometry.LocationType, "approximate") {
		hasCountry, hasLocal := false, false
		for _, t := range first.Types {
			switch t {
			case "country":
				hasCountry = true
			case "postal_code", "postal_code_prefix", "locality", "administrative_area_level_2":
				hasLocal = true
			}
		}
		if hasCountry && !hasLocal {
			return nil, fmt.Errorf("location too imprecise for %s", postalCode)
		}
	}

	c.logger.Debug("geocoded postal code", "postal_code", postalCode, "address", first.FormattedAddress)
	return &Location{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}
