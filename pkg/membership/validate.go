package membership

import (
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
)

// Input is checked from its start only; trailing characters are accepted.
var (
	emailRe   = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)
	phoneRe   = regexp.MustCompile(`^\d{10}`)
	zipcodeRe = regexp.MustCompile(`^(?:\d{5}|[a-zA-Z]\d[a-zA-Z]\d[a-zA-Z]\d)`)
)

// Messages shown for invalid contact details.
const (
	InvalidEmail   = "Invalid email format. Please enter a valid email address."
	InvalidPhone   = "Invalid phone number format. Please enter a valid phone number."
	InvalidZipcode = "Invalid zipcode format. Please enter a valid zipcode."
)

// ValidateEmail checks an email address.
func ValidateEmail(s string) error {
	if !emailRe.MatchString(s) {
		return apperrors.Validation("membership.ValidateEmail", InvalidEmail)
	}
	return nil
}

// ValidatePhone checks for a ten digit phone number.
func ValidatePhone(s string) error {
	if !phoneRe.MatchString(s) {
		return apperrors.Validation("membership.ValidatePhone", InvalidPhone)
	}
	return nil
}

// ValidateZipcode accepts a US zip or a Canadian postal code without the space.
func ValidateZipcode(s string) error {
	if !zipcodeRe.MatchString(s) {
		return apperrors.Validation("membership.ValidateZipcode", InvalidZipcode)
	}
	return nil
}

// Applicant holds the contact details collected for enrollment or transfer.
type Applicant struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Zipcode   string
}

// Validate checks every contact field.
func (a Applicant) Validate() error {
	if strings.TrimSpace(a.FirstName) == "" {
		return apperrors.Validation("membership.Validate", "please enter a first name")
	}
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if err := ValidatePhone(a.Phone); err != nil {
		return err
	}
	return ValidateZipcode(a.Zipcode)
}
