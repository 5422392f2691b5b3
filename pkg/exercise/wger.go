// Package exercise suggests exercises for a muscle group from the wger
// exercise database.
package exercise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/codeGROOVE-dev/retry"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
)

// MaxExercises is the number of suggestions returned.
const MaxExercises = 5

// englishLanguage is wger's language id for English.
const englishLanguage = 2

// NoImage is shown when an exercise has no main image.
const NoImage = "Image not available"

// HTTPClient interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Exercise is one suggestion.
type Exercise struct {
	ID          int
	Name        string
	Description string // plain text
	ImageURL    string
}

// Suggestion lists exercises for one muscle.
type Suggestion struct {
	Muscle    string
	Exercises []Exercise
}

// Client queries the wger REST API.
type Client struct {
	httpClient HTTPClient
	logger     *slog.Logger
	baseURL    string
	attempts   uint
	delay      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRetry bounds attempts per request and sets the initial backoff.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// New creates a wger client rooted at baseURL, e.g. https://wger.de/api/v2.
func New(baseURL string, httpClient HTTPClient, logger *slog.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		attempts:   3,
		delay:      500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type page[T any] struct {
	Results []T `json:"results"`
}

type muscle struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameEN string `json:"name_en"`
}

type exerciseRow struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ExerciseBase int    `json:"exercise_base"`
}

type image struct {
	Image string `json:"image"`
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Suggest returns up to MaxExercises exercises working muscleName.
func (c *Client) Suggest(ctx context.Context, muscleName string) (*Suggestion, error) {
	name := Capitalize(muscleName)
	if name == "" {
		return nil, apperrors.Validation("exercise.Suggest", "please enter a muscle group")
	}

	var muscles page[muscle]
	if err := c.getJSON(ctx, "/muscle/", nil, &muscles); err != nil {
		return nil, apperrors.External("exercise.Suggest", err)
	}
	idx := slices.IndexFunc(muscles.Results, func(m muscle) bool { return m.NameEN == name })
	if idx < 0 {
		return nil, apperrors.Validation("exercise.Suggest", "you seem to have entered an invalid input")
	}
	mid := muscles.Results[idx].ID

	var exercises page[exerciseRow]
	q := url.Values{"muscles": {strconv.Itoa(mid)}, "language": {strconv.Itoa(englishLanguage)}}
	if err := c.getJSON(ctx, "/exercise/", q, &exercises); err != nil {
		return nil, apperrors.External("exercise.Suggest", err)
	}
	rows := exercises.Results
	slices.SortFunc(rows, func(a, b exerciseRow) int { return a.ID - b.ID })
	if len(rows) > MaxExercises {
		rows = rows[:MaxExercises]
	}

	out := &Suggestion{Muscle: name}
	for _, row := range rows {
		ex := Exercise{ID: row.ID, Name: row.Name, Description: plainText(row.Description), ImageURL: NoImage}

		var images page[image]
		q := url.Values{"is_main": {"True"}, "exercise_base": {strconv.Itoa(row.ExerciseBase)}}
		if err := c.getJSON(ctx, "/exerciseimage/", q, &images); err != nil {
			return nil, apperrors.External("exercise.Suggest", err)
		}
		if len(images.Results) > 0 && images.Results[0].Image != "" {
			ex.ImageURL = images.Results[0].Image
		}
		out.Exercises = append(out.Exercises, ex)
	}

	c.logger.Debug("exercise suggestions", "muscle", name, "muscle_id", mid, "count", len(out.Exercises))
	return out, nil
}

// plainText converts an HTML description to readable text.
func plainText(html string) string {
	text, err := md.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(text), " ")
}

var errClient = errors.New("request rejected")

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					c.logger.Debug("failed to close response body", "error", err)
				}
			}()
			switch {
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("wger returned %d", resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("%w: wger returned %d", errClient, resp.StatusCode))
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying wger request", "url", u, "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}
	return nil
}
