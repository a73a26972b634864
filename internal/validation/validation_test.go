package validation

import (
	"errors"
	"strings"
	"testing"

	"chorequest/internal/models"
)

func TestAccountFields(t *testing.T) {
	tests := []struct {
		name      string
		validate  func(string) error
		input     string
		wantField string
	}{
		{"email", ValidateEmail, "parent@example.com", ""},
		{"email subdomain and tag", ValidateEmail, "mum+chores@mail.example.com", ""},
		{"email blank", ValidateEmail, "  ", "email"},
		{"email no at", ValidateEmail, "parent.example.com", "email"},
		{"email no domain", ValidateEmail, "parent@", "email"},
		{"email with space", ValidateEmail, "mum dad@example.com", "email"},
		{"name", ValidateName, "Sam", ""},
		{"name with apostrophe", ValidateName, "D'Arcy", ""},
		{"name one letter", ValidateName, "S", "name"},
		{"name blank", ValidateName, "", "name"},
		{"password", ValidatePassword, "hunter22", ""},
		{"password short", ValidatePassword, "short", "password"},
		{"password empty", ValidatePassword, "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		pin     string
		wantErr bool
	}{
		{"", false},
		{"1234", false},
		{"0000", false},
		{"123", true},
		{"12345", true},
		{"12a4", true},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := ValidatePIN(tt.pin)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePIN(%q) error = %v, wantErr %v", tt.pin, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("Make bed"); err != nil {
		t.Errorf("ValidateTitle() error = %v", err)
	}
	if err := ValidateTitle("   "); err == nil {
		t.Error("ValidateTitle() accepted blank title")
	}
	if err := ValidateTitle(strings.Repeat("x", maxTitleLength+1)); err == nil {
		t.Error("ValidateTitle() accepted overlong title")
	}
}

func TestValidateDateAndClock(t *testing.T) {
	if err := ValidateDate("2024-02-29"); err != nil {
		t.Errorf("ValidateDate() error = %v", err)
	}
	if err := ValidateDate("2024-2-3"); err == nil {
		t.Error("ValidateDate() accepted unpadded date")
	}
	if err := ValidateClock("17:30"); err != nil {
		t.Errorf("ValidateClock() error = %v", err)
	}
	if err := ValidateClock("25:00"); err == nil {
		t.Error("ValidateClock() accepted invalid hour")
	}
	if err := ValidateColor("#a1b2c3"); err != nil {
		t.Errorf("ValidateColor() error = %v", err)
	}
	if err := ValidateColor("red"); err == nil {
		t.Error("ValidateColor() accepted a name")
	}
}

func TestValidateAllowance(t *testing.T) {
	tests := []struct {
		name     string
		settings *models.AllowanceSettings
		wantErr  bool
	}{
		{name: "none", settings: nil},
		{name: "weekly saturday", settings: &models.AllowanceSettings{Amount: 500, Frequency: models.AllowanceWeekly, Day: 6}},
		{name: "monthly 31st", settings: &models.AllowanceSettings{Amount: 500, Frequency: models.AllowanceMonthly, Day: 31}},
		{name: "weekly day 8", settings: &models.AllowanceSettings{Amount: 500, Frequency: models.AllowanceWeekly, Day: 8}, wantErr: true},
		{name: "monthly day 0", settings: &models.AllowanceSettings{Amount: 500, Frequency: models.AllowanceMonthly, Day: 0}, wantErr: true},
		{name: "negative amount", settings: &models.AllowanceSettings{Amount: -1, Frequency: models.AllowanceWeekly, Day: 1}, wantErr: true},
		{name: "unknown frequency", settings: &models.AllowanceSettings{Amount: 1, Frequency: "DAILY", Day: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllowance(tt.settings)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAllowance() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
