// Package validation checks form input before it is sent anywhere. Failures
// are surfaced inline per field and never reach the network.
package validation

import (
	"regexp"
	"strings"

	"eduassess/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPasswordLen = 6
	minNameLen     = 2
	minRollNoLen   = 3
	minAge         = 10
	maxAge         = 100
)

// Validator validates login and signup form input.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin validates the login form. Department identifies the class
// the student belongs to and is required alongside the credentials.
func (v *Validator) ValidateLogin(creds domain.Credentials) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, validateEmail(creds.Email)...)
	errors = append(errors, validatePassword(creds.Password)...)

	if strings.TrimSpace(creds.Department) == "" {
		errors = append(errors, domain.NewMissingFieldError("department"))
	}

	return errors
}

// ValidateSignup validates the signup form. Roll number and age are
// optional; when present they must be well formed.
func (v *Validator) ValidateSignup(input domain.SignupInput) domain.ValidationErrors {
	var errors domain.ValidationErrors

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errors = append(errors, domain.NewMissingFieldError("name"))
	} else if len(name) < minNameLen {
		errors = append(errors, domain.NewInvalidFormatError("name", "must be at least 2 characters"))
	}

	errors = append(errors, validateEmail(input.Email)...)
	errors = append(errors, validatePassword(input.Password)...)

	if strings.TrimSpace(input.Department) == "" {
		errors = append(errors, domain.NewMissingFieldError("department"))
	}

	if rollNo := strings.TrimSpace(input.RollNo); rollNo != "" && len(rollNo) < minRollNoLen {
		errors = append(errors, domain.NewInvalidFormatError("rollNo", "must be at least 3 characters"))
	}

	if input.Age != 0 && (input.Age < minAge || input.Age > maxAge) {
		errors = append(errors, domain.NewOutOfRangeError("age", minAge, maxAge))
	}

	return errors
}

func validateEmail(email string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(email) == "" {
		errors = append(errors, domain.NewMissingFieldError("email"))
	} else if !emailPattern.MatchString(email) {
		errors = append(errors, domain.NewInvalidFormatError("email", "is not a valid email address"))
	}
	return errors
}

func validatePassword(password string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if password == "" {
		errors = append(errors, domain.NewMissingFieldError("password"))
	} else if len(password) < minPasswordLen {
		errors = append(errors, domain.NewInvalidFormatError("password", "must be at least 6 characters"))
	}
	return errors
}
