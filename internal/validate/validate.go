// Package validate holds the input rules checked before any write is attempted.
// Checks are pure: they never mutate their input and never perform I/O.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"taskpro/internal/service"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
	MinFullNameLen    = 2
	MinPasswordLen    = 6
)

// ErrUnknownValue marks an enumerated field holding a value outside its set.
// This is a programming error of the caller, not a FieldError.
var ErrUnknownValue = errors.New("unknown value")

// FieldError reports the first rule a record violates.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// TaskInput is a task form as typed by the user.
// Description and DueDate are raw strings; "" means not set.
type TaskInput struct {
	Title       string
	Description string
	Status      service.Status
	Priority    service.Priority
	DueDate     string
}

// Registration is the sign-up form.
type Registration struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks a task form. It returns nil, a *FieldError, or an error
// wrapping ErrUnknownValue.
func (in TaskInput) Validate() error {
	if in.Title == "" {
		return &FieldError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLen {
		return &FieldError{Field: "title", Message: "Title must be less than 200 characters"}
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLen {
		return &FieldError{Field: "description", Message: "Description must be less than 1000 characters"}
	}
	if !in.Status.Valid() {
		return fmt.Errorf("status %q: %w", in.Status, ErrUnknownValue)
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("priority %q: %w", in.Priority, ErrUnknownValue)
	}
	if in.DueDate != "" {
		if _, err := ParseDate(in.DueDate); err != nil {
			return &FieldError{Field: "due_date", Message: "Due date must be in YYYY-MM-DD format"}
		}
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(service.DateLayout, s, time.UTC)
}

// Validate checks a sign-up form field by field, then the password
// confirmation.
func (r Registration) Validate() error {
	if utf8.RuneCountInString(r.FullName) < MinFullNameLen {
		return &FieldError{Field: "fullName", Message: "Name must be at least 2 characters"}
	}
	if !IsEmail(r.Email) {
		return &FieldError{Field: "email", Message: "Invalid email address"}
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLen {
		return &FieldError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	if r.Password != r.ConfirmPassword {
		return &FieldError{Field: "confirmPassword", Message: "Passwords don't match"}
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

// IsEmail reports whether s is a plain addr-spec such as user@example.com.
func IsEmail(s string) bool {
	if strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	return emailPattern.MatchString(s)
}
