package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

// Locations returns the location registry ordered by gym id.
func (s *Store) Locations(ctx context.Context) ([]model.Location, error) {
	var locs []model.Location
	err := s.db.SelectContext(ctx, &locs, `SELECT gym_id, address, location, zip_code, amenities,
		latitude, longitude, capacity FROM locations ORDER BY gym_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locs, nil
}

// Location returns one gym or a not-found error.
func (s *Store) Location(ctx context.Context, id int) (*model.Location, error) {
	var loc model.Location
	err := s.db.GetContext(ctx, &loc, `SELECT gym_id, address, location, zip_code, amenities,
		latitude, longitude, capacity FROM locations WHERE gym_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("store.Location", "you seem to have entered an incorrect gymId")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query location %d: %w", id, err)
	}
	return &loc, nil
}

// Zipcode returns the reference point for a three-character prefix.
func (s *Store) Zipcode(ctx context.Context, prefix string) (*model.Zipcode, error) {
	var z model.Zipcode
	err := s.db.GetContext(ctx, &z, `SELECT zipcode, latitude, longitude FROM zipcodes WHERE zipcode = ?`,
		strings.ToUpper(prefix))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("store.Zipcode", "we are not available in your location yet")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query zipcode %s: %w", prefix, err)
	}
	return &z, nil
}

// OccupancySamples returns every historical sample inner-joined with its
// location's capacity, in log order.
func (s *Store) OccupancySamples(ctx context.Context) ([]model.OccupancySample, error) {
	var samples []model.OccupancySample
	err := s.db.SelectContext(ctx, &samples, `SELECT o.gym_id, o.month, o.day_of_week, o.hour,
		o.number_people, l.capacity
		FROM occupancy o JOIN locations l ON l.gym_id = o.gym_id
		ORDER BY o.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy samples: %w", err)
	}
	return samples, nil
}

// OccupancyFingerprint identifies the current contents of the occupancy log
// and location capacities. Row-weighted sums make it change when rows are
// added, removed or edited in place.
func (s *Store) OccupancyFingerprint(ctx context.Context) (string, error) {
	var fp struct {
		Count       int   `db:"n"`
		MaxID       int64 `db:"max_id"`
		People      int64 `db:"people"`
		PeopleByRow int64 `db:"people_w"`
		SlotByRow   int64 `db:"slot_w"`
		GymByRow    int64 `db:"gym_w"`
		Locations   int   `db:"locs"`
		CapByGym    int64 `db:"cap_w"`
	}
	err := s.db.GetContext(ctx, &fp, `SELECT
		COUNT(*) AS n,
		COALESCE(MAX(id), 0) AS max_id,
		COALESCE(SUM(number_people), 0) AS people,
		COALESCE(SUM(id * number_people), 0) AS people_w,
		COALESCE(SUM(id * (month * 168 + day_of_week * 24 + hour)), 0) AS slot_w,
		COALESCE(SUM(id * gym_id), 0) AS gym_w,
		(SELECT COUNT(*) FROM locations) AS locs,
		(SELECT COALESCE(SUM(gym_id * capacity), 0) FROM locations) AS cap_w
		FROM occupancy`)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint occupancy: %w", err)
	}
	return fmt.Sprintf("%d:%d:%d:%d:%d:%d:%d:%d", fp.Count, fp.MaxID, fp.People, fp.PeopleByRow,
		fp.SlotByRow, fp.GymByRow, fp.Locations, fp.CapByGym), nil
}

// Trainers returns the trainer catalog in catalog order.
func (s *Store) Trainers(ctx context.Context) ([]model.Trainer, error) {
	var trainers []model.Trainer
	if err := s.db.SelectContext(ctx, &trainers, `SELECT name, specialization, age FROM trainers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list trainers: %w", err)
	}
	return trainers, nil
}

// Reviews returns the review corpus.
func (s *Store) Reviews(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	if err := s.db.SelectContext(ctx, &reviews, `SELECT trainer, review FROM reviews ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// UsageSessions returns a member's gym visits ordered by date.
func (s *Store) UsageSessions(ctx context.Context, customerID string) ([]model.UsageSession, error) {
	var sessions []model.UsageSession
	err := s.db.SelectContext(ctx, &sessions, `SELECT customer_id, date, duration_hours
		FROM usage_sessions WHERE customer_id = ? ORDER BY date, id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage for %s: %w", customerID, err)
	}
	return sessions, nil
}
