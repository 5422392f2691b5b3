// Package forecast predicts gym occupancy and recommends the quietest hours
// to visit a location.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/config"
	"github.com/codeGROOVE-dev/gymassist/pkg/forest"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
	"github.com/codeGROOVE-dev/gymassist/pkg/timeslot"
)

// TopSlots is the number of hours recommended per day.
const TopSlots = 5

// When is the horizon a member asked about.
type When int

// Horizons.
const (
	Today When = iota
	Tomorrow
	Week
)

func (w When) String() string {
	switch w {
	case Today:
		return "today"
	case Tomorrow:
		return "tomorrow"
	default:
		return "week"
	}
}

// ParseWhen maps the member's answer to a horizon. Anything other than
// "today" or "tomorrow" asks for the whole week.
func ParseWhen(token string) When {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "today":
		return Today
	case "tomorrow":
		return Tomorrow
	default:
		return Week
	}
}

// Request is a resolved prediction request.
type Request struct {
	LocationID int
	When       When
	TargetDate time.Time
}

// Resolve turns a horizon into a target date relative to now.
func Resolve(locationID int, when When, now time.Time) Request {
	target := now
	if when == Tomorrow {
		target = timeslot.AddDays(now, 1)
	}
	return Request{LocationID: locationID, When: when, TargetDate: target}
}

// SampleSource provides the occupancy log and location registry.
type SampleSource interface {
	Location(ctx context.Context, id int) (*model.Location, error)
	OccupancySamples(ctx context.Context) ([]model.OccupancySample, error)
	OccupancyFingerprint(ctx context.Context) (string, error)
}

// Forecaster trains occupancy models and ranks visiting hours.
type Forecaster struct {
	src          SampleSource
	logger       *slog.Logger
	now          func() time.Time
	cache        *otter.Cache[string, *Session]
	forest       forest.Config
	testFraction float64
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(f *Forecaster) { f.now = now }
}

// New creates a Forecaster. When cfg.CacheModels is set, fitted sessions are
// reused until the occupancy fingerprint changes or CacheTTL elapses.
func New(src SampleSource, cfg config.ForecastConfig, logger *slog.Logger, opts ...Option) *Forecaster {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Forecaster{
		src:    src,
		logger: logger,
		now:    time.Now,
		forest: forest.Config{
			Trees:          cfg.Trees,
			MaxDepth:       cfg.MaxDepth,
			MinSamplesLeaf: cfg.MinSamplesLeaf,
			Seed:           cfg.Seed,
		},
		testFraction: cfg.TestFraction,
	}
	if cfg.CacheModels {
		f.cache = otter.Must(&otter.Options[string, *Session]{
			MaximumSize:      4,
			ExpiryCalculator: otter.ExpiryWriting[string, *Session](cfg.CacheTTL),
		})
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Recommendation is the ranked answer for one request.
type Recommendation struct {
	Request Request
	// NoSlotsToday is set when a "today" request had no hours left and was
	// answered for the following day instead.
	NoSlotsToday bool
	// Day holds the ranked slots for Today and Tomorrow answers.
	Day []Prediction
	// Week holds ranked slots per weekday, Monday first, for Week answers.
	Week [timeslot.DaysPerWeek][]Prediction
}

// Lines renders the recommendation as display lines.
func (r *Recommendation) Lines() []string {
	var lines []string
	switch r.Request.When {
	case Today:
		lines = append(lines, "The best time for you to visit the gym today is: ", labels(r.Day))
	case Tomorrow:
		if r.NoSlotsToday {
			lines = append(lines, "Sorry, there is no suitable time to visit the gym today")
		}
		lines = append(lines, "The best time for you to visit the gym tomorrow is: ", labels(r.Day))
	default:
		lines = append(lines, "The best time for you to visit the gym on: ")
		for day, slots := range r.Week {
			lines = append(lines, timeslot.DayName(day)+": "+labels(slots))
		}
	}
	return lines
}

func labels(slots []Prediction) string {
	hours := make([]int, len(slots))
	for i, s := range slots {
		hours[i] = s.Hour
	}
	return timeslot.JoinLabels(hours)
}

// Recommend answers "when should I go" for one location.
func (f *Forecaster) Recommend(ctx context.Context, locationID int, token string) (*Recommendation, error) {
	if _, err := f.src.Location(ctx, locationID); err != nil {
		return nil, err
	}

	sess, err := f.Session(ctx)
	if err != nil {
		return nil, err
	}

	now := f.now()
	req := Resolve(locationID, ParseWhen(token), now)
	rec := &Recommendation{Request: req}

	preds, err := sess.Predict(Grid(locationID, req.TargetDate))
	if err != nil {
		return nil, apperrors.Computation("forecast.Recommend", fmt.Errorf("predicting grid: %w", err))
	}

	switch req.When {
	case Today:
		weekday, hour := timeslot.Weekday(req.TargetDate), now.Hour()
		rec.Day = Rank(preds, func(p Prediction) bool { return p.Weekday == weekday && p.Hour >= hour })
		if len(rec.Day) > 0 {
			break
		}
		// Nothing left today: answer for the next calendar day.
		rec.NoSlotsToday = true
		rec.Request = Request{LocationID: locationID, When: Tomorrow, TargetDate: timeslot.AddDays(req.TargetDate, 1)}
		if preds, err = sess.Predict(Grid(locationID, rec.Request.TargetDate)); err != nil {
			return nil, apperrors.Computation("forecast.Recommend", fmt.Errorf("predicting grid: %w", err))
		}
		fallthrough
	case Tomorrow:
		weekday := timeslot.Weekday(rec.Request.TargetDate)
		rec.Day = Rank(preds, func(p Prediction) bool { return p.Weekday == weekday })
	default:
		for day := range rec.Week {
			rec.Week[day] = Rank(preds, func(p Prediction) bool { return p.Weekday == day })
		}
	}

	f.logger.Debug("occupancy recommendation",
		"gym_id", locationID, "when", rec.Request.When, "target", rec.Request.TargetDate.Format(time.DateOnly),
		"fell_through", rec.NoSlotsToday)
	return rec, nil
}

// Rank keeps predictions matching keep, sorts them by ascending ratio with a
// stable sort and returns at most TopSlots.
func Rank(preds []Prediction, keep func(Prediction) bool) []Prediction {
	var out []Prediction
	for _, p := range preds {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b Prediction) int {
		switch {
		case a.Ratio < b.Ratio:
			return -1
		case a.Ratio > b.Ratio:
			return 1
		}
		return 0
	})
	if len(out) > TopSlots {
		out = out[:TopSlots]
	}
	return out
}

// Session returns a fitted model, from the cache when one matches the
// current data fingerprint.
func (f *Forecaster) Session(ctx context.Context) (*Session, error) {
	var fingerprint string
	if f.cache != nil {
		fp, err := f.src.OccupancyFingerprint(ctx)
		if err != nil {
			return nil, fmt.Errorf("fingerprinting occupancy: %w", err)
		}
		fingerprint = fp
		if sess, ok := f.cache.GetIfPresent(fp); ok {
			f.logger.Debug("model cache hit", "fingerprint", fp)
			return sess, nil
		}
	}

	samples, err := f.src.OccupancySamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading occupancy samples: %w", err)
	}
	start := f.now()
	sess, err := Train(ctx, samples, f.forest, f.testFraction)
	if err != nil {
		if errors.Is(err, forest.ErrNoData) {
			return nil, apperrors.Computation("forecast.Train", errors.New("no occupancy history to learn from"))
		}
		return nil, apperrors.Computation("forecast.Train", err)
	}
	sess.Fingerprint = fingerprint
	sess.TrainedAt = start

	f.logger.Info("occupancy model trained",
		"train_rows", sess.TrainRows, "validation_rows", sess.ValidationRows,
		"mae", sess.MAE, "r2", sess.R2, "trees", f.forest.Trees, "duration", f.now().Sub(start))

	if f.cache != nil {
		f.cache.Set(fingerprint, sess)
	}
	return sess, nil
}
