// Package chat runs the AnytimeAssistant conversation over a line-oriented
// reader and writer.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codeGROOVE-dev/gymassist/pkg/exercise"
	"github.com/codeGROOVE-dev/gymassist/pkg/faq"
	"github.com/codeGROOVE-dev/gymassist/pkg/forecast"
	"github.com/codeGROOVE-dev/gymassist/pkg/locator"
	"github.com/codeGROOVE-dev/gymassist/pkg/membership"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
	"github.com/codeGROOVE-dev/gymassist/pkg/trainer"
)

// Members enrolls, looks up and manages members.
type Members interface {
	Login(ctx context.Context, customerID string) (*model.Member, error)
	Enroll(ctx context.Context, a membership.Applicant, plan membership.Plan) (model.Member, error)
	Pause(ctx context.Context, customerID string) error
	Cancel(ctx context.Context, customerID, reason string) error
	Reactivate(ctx context.Context, customerID string) (bool, error)
	Transfer(ctx context.Context, customerID string, to membership.Applicant) error
}

// Locator finds the closest gyms.
type Locator interface {
	Nearest(ctx context.Context, zipcode, amenities string) (*locator.Result, error)
}

// Trainers recommends and assigns a personal trainer.
type Trainers interface {
	Assign(ctx context.Context, customerID, requirement string) (*trainer.Scored, error)
}

// Exercises suggests exercises for a muscle group.
type Exercises interface {
	Suggest(ctx context.Context, muscle string) (*exercise.Suggestion, error)
}

// Forecaster recommends quiet hours at a gym.
type Forecaster interface {
	Recommend(ctx context.Context, locationID int, token string) (*forecast.Recommendation, error)
}

// Gyms looks up a gym by id.
type Gyms interface {
	Location(ctx context.Context, id int) (*model.Location, error)
}

// FAQ answers free-text questions.
type FAQ interface {
	Answer(ctx context.Context, question string) (string, faq.Source)
}

// Usage lists a member's gym visits.
type Usage interface {
	UsageSessions(ctx context.Context, customerID string) ([]model.UsageSession, error)
}

// App holds every collaborator the conversation uses.
type App struct {
	Members   Members
	Locator   Locator
	Trainers  Trainers
	Exercises Exercises
	Forecast  Forecaster
	Gyms      Gyms
	FAQ       FAQ
	Usage     Usage
	Logger    *slog.Logger

	// RequestTimeout bounds each component call made for one prompt.
	RequestTimeout time.Duration
	// MaxAttempts bounds re-prompting after invalid input.
	MaxAttempts int
}

// SessionOption configures one conversation.
type SessionOption func(*Session)

// WithColor turns ANSI colour on or off for the session.
func WithColor(on bool) SessionOption {
	return func(s *Session) { s.color = on }
}

// WithSessionID fixes the session id used in logs.
func WithSessionID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

// Run holds one conversation until the member exits, input ends or ctx is
// canceled. End of input is not an error.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer, opts ...SessionOption) error {
	s := newSession(a, in, out, opts...)
	s.logger.Info("session started")
	err := s.start(ctx)
	switch {
	case errors.Is(err, errInputClosed):
		s.logger.Info("session ended", "reason", "input closed")
		return nil
	case err != nil:
		s.logger.Info("session ended", "reason", err)
		return err
	}
	s.logger.Info("session ended", "reason", "goodbye")
	return nil
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func newSessionID() string {
	return uuid.NewString()
}
