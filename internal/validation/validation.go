package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var phoneRegex = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)

// ValidationError represents a validation error on a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateAmount checks that a monetary amount is positive
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	return nil
}

// ValidateBirthYear checks that a birth year is plausible; zero means unset
func ValidateBirthYear(year int) error {
	if year == 0 {
		return nil
	}
	current := time.Now().Year()
	if year < 1900 || year > current {
		return ValidationError{Field: "birth_year", Message: "birth year is out of range"}
	}
	return nil
}

// ValidatePhone checks a phone number; empty means unset
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return ValidationError{Field: "phone", Message: "invalid phone number"}
	}
	return nil
}

// ValidateRelationship checks a family member relationship value
func ValidateRelationship(relationship string) error {
	switch relationship {
	case "self", "spouse", "child", "parent", "sibling", "other":
		return nil
	}
	return ValidationError{Field: "relationship", Message: "invalid relationship"}
}
