package util

import (
	"errors"
	"regexp"
	"time"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks a basic email shape.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > 128 || !emailRe.MatchString(email) {
		return errors.New("invalid email")
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD date string and returns the parsed day.
func ValidateDate(date string) (time.Time, error) {
	if date == "" {
		return time.Time{}, errors.New("date is required")
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return t, nil
}

// ValidateOneOf checks value against an allowed closed set.
func ValidateOneOf(value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.New("value not allowed: " + value)
}
