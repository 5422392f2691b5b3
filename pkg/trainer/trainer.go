// Package trainer matches members with personal trainers by specialization
// and rates trainers from the sentiment of their reviews.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"gonum.org/v1/gonum/stat"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
	"github.com/codeGROOVE-dev/gymassist/pkg/store"
	"github.com/codeGROOVE-dev/gymassist/pkg/textscore"
)

// Catalog provides trainers and their reviews.
type Catalog interface {
	Trainers(ctx context.Context) ([]model.Trainer, error)
	Reviews(ctx context.Context) ([]model.Review, error)
}

// Assigner writes the chosen trainer to a member record.
type Assigner interface {
	Update(ctx context.Context, customerID string, fields map[store.Field]string) error
}

// Scored is a trainer with its match and review scores.
type Scored struct {
	model.Trainer
	Similarity  float64 // cosine similarity to the requirement, [0,1]
	ReviewScore float64 // mean review sentiment, [-1,1]; 0 without reviews
	Rating      int     // 1..5
}

// Matcher recommends trainers.
type Matcher struct {
	catalog    Catalog
	scorer     textscore.Scorer
	assigner   Assigner
	logger     *slog.Logger
	attempts   uint
	retryDelay time.Duration
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithRetry sets how many times a sentiment score is attempted.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(m *Matcher) {
		m.attempts = max(attempts, 1)
		m.retryDelay = delay
	}
}

// New creates a Matcher.
func New(catalog Catalog, scorer textscore.Scorer, assigner Assigner, logger *slog.Logger, opts ...Option) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Matcher{
		catalog:    catalog,
		scorer:     scorer,
		assigner:   assigner,
		logger:     logger,
		attempts:   3,
		retryDelay: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rating maps a review score on [-1,1] linearly onto 1..5, rounding half to
// even and clamping.
func Rating(reviewScore float64) int {
	r := int(math.RoundToEven(1 + (reviewScore+1)*2))
	return min(max(r, 1), 5)
}

// Score rates every trainer in catalog order. Similarity is left at zero.
func (m *Matcher) Score(ctx context.Context) ([]Scored, error) {
	trainers, err := m.catalog.Trainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading trainers: %w", err)
	}
	reviews, err := m.catalog.Reviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reviews: %w", err)
	}

	byTrainer := make(map[string][]float64)
	for _, r := range reviews {
		s, err := m.sentiment(ctx, r.Text)
		if err != nil {
			return nil, err
		}
		byTrainer[r.TrainerName] = append(byTrainer[r.TrainerName], s)
	}

	scored := make([]Scored, len(trainers))
	for i, t := range trainers {
		scored[i] = Scored{Trainer: t}
		if scores := byTrainer[t.Name]; len(scores) > 0 {
			scored[i].ReviewScore = stat.Mean(scores, nil)
		}
		scored[i].Rating = Rating(scored[i].ReviewScore)
	}
	return scored, nil
}

func (m *Matcher) sentiment(ctx context.Context, text string) (float64, error) {
	var score float64
	err := retry.Do(
		func() error {
			s, err := m.scorer.Score(ctx, text)
			if err != nil {
				return err
			}
			score = s
			return nil
		},
		retry.Attempts(m.attempts),
		retry.Delay(m.retryDelay),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			m.logger.Warn("retrying sentiment score", "attempt", n+1, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, apperrors.External("trainer.sentiment", err)
	}
	return score, nil
}

// Match returns the recommended trainer for requirement.
//
// The requirement must equal some trainer's specialization (ignoring case
// and surrounding space). Trainers are then ranked by cosine similarity,
// ties in reverse catalog order, and the first one whose review score equals
// the top-ranked trainer's review score is chosen.
func (m *Matcher) Match(ctx context.Context, requirement string) (*Scored, error) {
	req := strings.ToLower(strings.TrimSpace(requirement))
	if req == "" {
		return nil, apperrors.Validation("trainer.Match", "please enter a trainer requirement")
	}

	scored, err := m.Score(ctx)
	if err != nil {
		return nil, err
	}

	specs := make([]string, len(scored))
	for i, s := range scored {
		specs[i] = strings.ToLower(s.Specialization)
	}
	if !slices.Contains(specs, req) {
		return nil, apperrors.NotFound("trainer.Match", "no trainer found for this specialization")
	}

	vs := textscore.Fit(specs)
	reqVec := vs.Transform(req)
	for i := range scored {
		scored[i].Similarity = textscore.Cosine(reqVec, vs.Transform(specs[i]))
	}

	// Stable ascending order, reversed: trainers tied on similarity rank
	// later catalog entries first.
	ranked := slices.Clone(scored)
	slices.SortStableFunc(ranked, func(a, b Scored) int {
		switch {
		case a.Similarity < b.Similarity:
			return -1
		case a.Similarity > b.Similarity:
			return 1
		}
		return 0
	})
	slices.Reverse(ranked)

	for _, s := range ranked {
		if s.ReviewScore == ranked[0].ReviewScore {
			m.logger.Debug("trainer matched", "requirement", req, "trainer", s.Name,
				"similarity", s.Similarity, "review_score", s.ReviewScore, "rating", s.Rating)
			return &s, nil
		}
	}
	return nil, apperrors.NotFound("trainer.Match", "no trainer available")
}

// Assign matches a trainer and records it on the member.
func (m *Matcher) Assign(ctx context.Context, customerID, requirement string) (*Scored, error) {
	s, err := m.Match(ctx, requirement)
	if err != nil {
		return nil, err
	}
	if err := m.assigner.Update(ctx, customerID, map[store.Field]string{store.FieldTrainer: s.Name}); err != nil {
		return nil, fmt.Errorf("assigning trainer %s: %w", s.Name, err)
	}
	m.logger.Info("trainer assigned", "customer_id", customerID, "trainer", s.Name)
	return s, nil
}
