package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

// Field names a writable member column.
type Field string

// Writable member fields. The customer id is immutable.
const (
	FieldFirstName      Field = "first_name"
	FieldLastName       Field = "last_name"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldZipcode        Field = "zipcode"
	FieldMembershipPlan Field = "membership_plan"
	FieldStatus         Field = "status"
	FieldCancelReason   Field = "cancel_reason"
	FieldTrainer        Field = "trainer"
)

var writableFields = map[Field]bool{
	FieldFirstName:      true,
	FieldLastName:       true,
	FieldEmail:          true,
	FieldPhone:          true,
	FieldZipcode:        true,
	FieldMembershipPlan: true,
	FieldStatus:         true,
	FieldCancelReason:   true,
	FieldTrainer:        true,
}

const memberColumns = `customer_id, first_name, last_name, email, phone, zipcode,
	membership_plan, status, cancel_reason, trainer, gender, age, weight, height, activity_level`

// FindOne returns the member with the given customer id.
func (s *Store) FindOne(ctx context.Context, customerID string) (*model.Member, error) {
	return findMember(ctx, s.db, customerID)
}

func findMember(ctx context.Context, q sqlx.QueryerContext, customerID string) (*model.Member, error) {
	var m model.Member
	err := sqlx.GetContext(ctx, q, &m, `SELECT `+memberColumns+` FROM members WHERE customer_id = ?`, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("store.FindOne", "invalid customer id")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query member %s: %w", customerID, err)
	}
	return &m, nil
}

// ListAll returns every member ordered by insertion.
func (s *Store) ListAll(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	if err := s.db.SelectContext(ctx, &members, `SELECT `+memberColumns+` FROM members ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Update sets the given fields on one member under that member's lock.
func (s *Store) Update(ctx context.Context, customerID string, fields map[Field]string) error {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for f := range fields {
		if !writableFields[f] {
			return fmt.Errorf("field %q is not writable", f)
		}
		names = append(names, string(f))
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		sets[i] = name + " = ?"
		args = append(args, fields[Field(name)])
	}
	args = append(args, customerID)

	unlock := s.locks.lock(customerID)
	defer unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE members SET `+strings.Join(sets, ", ")+` WHERE customer_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update member %s: %w", customerID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("store.Update", "invalid customer id")
	}
	s.logger.Debug("member updated", "customer_id", customerID, "fields", names)
	return nil
}

// Mutate runs a read-modify-write on one member inside a transaction while
// holding that member's lock. fn may return an error to abort without writing.
func (s *Store) Mutate(ctx context.Context, customerID string, fn func(*model.Member) error) error {
	unlock := s.locks.lock(customerID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m, err := findMember(ctx, tx, customerID)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	m.CustomerID = customerID

	_, err = tx.NamedExecContext(ctx, `UPDATE members SET
		first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
		zipcode = :zipcode, membership_plan = :membership_plan, status = :status,
		cancel_reason = :cancel_reason, trainer = :trainer
		WHERE customer_id = :customer_id`, m)
	if err != nil {
		return fmt.Errorf("failed to write member %s: %w", customerID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit member %s: %w", customerID, err)
	}
	s.logger.Debug("member mutated", "customer_id", customerID, "status", m.Status)
	return nil
}

// Append inserts a new member and returns it with its assigned customer id,
// "gym_" followed by the member count plus one.
func (s *Store) Append(ctx context.Context, m model.Member) (model.Member, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Member{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM members`); err != nil {
		return model.Member{}, fmt.Errorf("failed to count members: %w", err)
	}

	// Skip ids taken by imported rows that do not follow the count.
	for n := count + 1; ; n++ {
		id := fmt.Sprintf("gym_%d", n)
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM members WHERE customer_id = ?`, id); err != nil {
			return model.Member{}, fmt.Errorf("failed to check id %s: %w", id, err)
		}
		if exists == 0 {
			m.CustomerID = id
			break
		}
	}

	_, err = tx.NamedExecContext(ctx, `INSERT INTO members (`+memberColumns+`) VALUES (
		:customer_id, :first_name, :last_name, :email, :phone, :zipcode,
		:membership_plan, :status, :cancel_reason, :trainer, :gender, :age, :weight, :height, :activity_level)`, m)
	if err != nil {
		return model.Member{}, fmt.Errorf("failed to insert member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Member{}, fmt.Errorf("failed to commit member: %w", err)
	}
	s.logger.Info("member appended", "customer_id", m.CustomerID, "plan", m.MembershipPlan)
	return m, nil
}
