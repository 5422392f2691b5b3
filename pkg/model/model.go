// Package model holds the entities shared between the store and the services.
package model

// Membership statuses written to the record store.
const (
	StatusActive   = "Active"
	StatusPaused   = "Paused"
	StatusCanceled = "Cancel"
	StatusTransfer = "Transfer"

	// NotAssigned fills cancel reason and trainer on new members.
	NotAssigned = "NA"
)

// Member is one row of the membership record store.
type Member struct {
	CustomerID     string  `db:"customer_id"`
	FirstName      string  `db:"first_name"`
	LastName       string  `db:"last_name"`
	Email          string  `db:"email"`
	Phone          string  `db:"phone"`
	Zipcode        string  `db:"zipcode"`
	MembershipPlan string  `db:"membership_plan"`
	Status         string  `db:"status"`
	CancelReason   string  `db:"cancel_reason"`
	Trainer        string  `db:"trainer"`
	Gender         string  `db:"gender"`
	Age            int     `db:"age"`
	WeightKg       float64 `db:"weight"`
	HeightCm       float64 `db:"height"`
	ActivityLevel  string  `db:"activity_level"`
}

// Location is a gym in the location registry.
type Location struct {
	ID        int     `db:"gym_id"`
	Address   string  `db:"address"`
	City      string  `db:"location"`
	ZipCode   string  `db:"zip_code"`
	Amenities string  `db:"amenities"` // comma-separated, e.g. "Sauna, Pool"
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
	Capacity  int     `db:"capacity"`
}

// Zipcode maps a three-character zip prefix to a reference point.
type Zipcode struct {
	Prefix    string  `db:"zipcode"`
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
}

// OccupancySample is one historical head count joined with the gym capacity.
// Weekday follows Monday=0 .. Sunday=6.
type OccupancySample struct {
	LocationID  int `db:"gym_id"`
	Month       int `db:"month"`
	Weekday     int `db:"day_of_week"`
	Hour        int `db:"hour"`
	PeopleCount int `db:"number_people"`
	Capacity    int `db:"capacity"`
}

// Ratio returns PeopleCount / Capacity.
func (s OccupancySample) Ratio() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.PeopleCount) / float64(s.Capacity)
}

// Trainer is a personal trainer in the catalog.
type Trainer struct {
	Name           string `db:"name"`
	Specialization string `db:"specialization"`
	Age            int    `db:"age"`
}

// Review is free-form feedback about a trainer.
type Review struct {
	TrainerName string `db:"trainer"`
	Text        string `db:"review"`
}

// UsageSession is one visit of a member; Date is YYYY-MM-DD.
type UsageSession struct {
	CustomerID    string  `db:"customer_id"`
	Date          string  `db:"date"`
	DurationHours float64 `db:"duration_hours"`
}
