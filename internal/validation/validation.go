package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"chorequest/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	pinRegex   = regexp.MustCompile(`^[0-9]{4}$`)
	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

const maxTitleLength = 120

// ValidationError represents a validation error
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

// ValidateName checks if a name is valid
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

// ValidatePIN checks a profile PIN. An empty PIN means no PIN.
func ValidatePIN(pin string) error {
	if pin == "" {
		return nil
	}
	if !pinRegex.MatchString(pin) {
		return ValidationError{Field: "pin", Message: "pin must be exactly 4 digits"}
	}
	return nil
}

// ValidateTitle checks a task, goal or event title
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if len(title) > maxTitleLength {
		return ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", maxTitleLength)}
	}
	return nil
}

// ValidateAmount checks that a reward, target or allowance amount is not negative
func ValidateAmount(field string, amount int64) error {
	if amount < 0 {
		return ValidationError{Field: field, Message: "must not be negative"}
	}
	return nil
}

// ValidateDate checks an ISO calendar day
func ValidateDate(date string) error {
	if _, err := models.ParseDate(date); err != nil {
		return ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return nil
}

// ValidateClock checks an optional HH:MM time of day
func ValidateClock(clock string) error {
	if clock == "" {
		return nil
	}
	if _, err := time.Parse("15:04", clock); err != nil {
		return ValidationError{Field: "time", Message: "time must be HH:MM"}
	}
	return nil
}

// ValidateColor checks an optional #rrggbb color
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorRegex.MatchString(color) {
		return ValidationError{Field: "color", Message: "color must be #rrggbb"}
	}
	return nil
}

// ValidateAllowance checks allowance settings for their frequency
func ValidateAllowance(s *models.AllowanceSettings) error {
	if s == nil {
		return nil
	}
	if err := ValidateAmount("amount", s.Amount); err != nil {
		return err
	}
	if err := ValidateAmount("pointThreshold", s.PointThreshold); err != nil {
		return err
	}
	switch s.Frequency {
	case models.AllowanceWeekly:
		if s.Day < 1 || s.Day > 7 {
			return ValidationError{Field: "day", Message: "weekly day must be 1-7"}
		}
	case models.AllowanceMonthly:
		if s.Day < 1 || s.Day > 31 {
			return ValidationError{Field: "day", Message: "monthly day must be 1-31"}
		}
	default:
		return ValidationError{Field: "frequency", Message: "frequency must be WEEKLY or MONTHLY"}
	}
	return nil
}
