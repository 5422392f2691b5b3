// Package membership enrolls new members and manages existing memberships.
package membership

import (
	"context"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
	"github.com/codeGROOVE-dev/gymassist/pkg/notify"
)

// Messages shown after a membership change.
const (
	PausedMessage      = "We have successfully paused your membership. Your automatic billing will stop at the end of this month, access on your key has also been paused"
	CanceledMessage    = "We are sorry to see you go! please return your key to your home gym to complete the process, you have been a valued customer."
	AlreadyActive      = "You are already an active member!"
	ReactivatedMessage = "We have successfully reactivated your membership. Your automatic billing will start from today, access on your key has also been activated"
	TransferredMessage = "We have successfully transferred your account. The transferred member will be able to use the gym till your membership expires at the end of the year, they can then choose to renew it"
)

// Store is the member record store.
type Store interface {
	FindOne(ctx context.Context, customerID string) (*model.Member, error)
	Append(ctx context.Context, m model.Member) (model.Member, error)
	Mutate(ctx context.Context, customerID string, fn func(*model.Member) error) error
}

// Notifier queues a message for delivery without blocking.
type Notifier interface {
	Go(ctx context.Context, msg notify.Message)
}

// Service enrolls and manages members.
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

// New creates a Service. notifier may be nil to skip confirmation email.
func New(store Store, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Enroll stores a new active member on plan and queues the confirmation
// email. Email delivery never fails the enrollment.
func (s *Service) Enroll(ctx context.Context, a Applicant, plan Plan) (model.Member, error) {
	if err := a.Validate(); err != nil {
		return model.Member{}, err
	}
	m, err := s.store.Append(ctx, model.Member{
		FirstName:      strings.TrimSpace(a.FirstName),
		LastName:       strings.TrimSpace(a.LastName),
		Email:          strings.TrimSpace(a.Email),
		Phone:          strings.TrimSpace(a.Phone),
		Zipcode:        strings.TrimSpace(a.Zipcode),
		MembershipPlan: plan.Name,
		Status:         model.StatusActive,
		CancelReason:   model.NotAssigned,
		Trainer:        model.NotAssigned,
	})
	if err != nil {
		return model.Member{}, err
	}
	s.logger.Info("member enrolled", "customer_id", m.CustomerID, "plan", m.MembershipPlan)
	if s.notifier != nil {
		s.notifier.Go(ctx, notify.Enrollment(m))
	}
	return m, nil
}

// Action is a manage-membership request.
type Action int

// Manage-membership actions.
const (
	ActionNone Action = iota
	ActionPause
	ActionCancel
	ActionReactivate
	ActionTransfer
)

// ParseAction finds the first action named in reply, checking pause,
// cancel, reactivate and transfer in that order.
func ParseAction(reply string) Action {
	r := strings.ToLower(reply)
	switch {
	case strings.Contains(r, "pause"):
		return ActionPause
	case strings.Contains(r, "cancel"):
		return ActionCancel
	case strings.Contains(r, "reactivate"):
		return ActionReactivate
	case strings.Contains(r, "transfer"):
		return ActionTransfer
	}
	return ActionNone
}

// Pause suspends billing and key access.
func (s *Service) Pause(ctx context.Context, customerID string) error {
	return s.setStatus(ctx, customerID, model.StatusPaused, func(m *model.Member) {})
}

// Cancel ends the membership, recording the lower-cased reason.
func (s *Service) Cancel(ctx context.Context, customerID, reason string) error {
	reason = strings.ToLower(strings.TrimSpace(reason))
	if reason == "" {
		reason = model.NotAssigned
	}
	return s.setStatus(ctx, customerID, model.StatusCanceled, func(m *model.Member) { m.CancelReason = reason })
}

// Reactivate restores an inactive membership. It reports false when the
// member was already active.
func (s *Service) Reactivate(ctx context.Context, customerID string) (bool, error) {
	changed := false
	err := s.store.Mutate(ctx, customerID, func(m *model.Member) error {
		if m.Status == model.StatusActive {
			return nil
		}
		m.Status = model.StatusActive
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("membership reactivate", "customer_id", customerID, "changed", changed)
	return changed, nil
}

// Transfer hands the membership to a new holder.
func (s *Service) Transfer(ctx context.Context, customerID string, to Applicant) error {
	if err := to.Validate(); err != nil {
		return err
	}
	return s.setStatus(ctx, customerID, model.StatusTransfer, func(m *model.Member) {
		m.FirstName = strings.TrimSpace(to.FirstName)
		m.LastName = strings.TrimSpace(to.LastName)
		m.Email = strings.TrimSpace(to.Email)
		m.Phone = strings.TrimSpace(to.Phone)
		m.Zipcode = strings.TrimSpace(to.Zipcode)
	})
}

func (s *Service) setStatus(ctx context.Context, customerID, status string, edit func(*model.Member)) error {
	err := s.store.Mutate(ctx, customerID, func(m *model.Member) error {
		edit(m)
		m.Status = status
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("membership status changed", "customer_id", customerID, "status", status)
	return nil
}

// Login looks up an existing member by customer id.
func (s *Service) Login(ctx context.Context, customerID string) (*model.Member, error) {
	id := strings.ToLower(strings.TrimSpace(customerID))
	if id == "" {
		return nil, apperrors.Validation("membership.Login", "please enter your customer id")
	}
	return s.store.FindOne(ctx, id)
}
