package util

import "testing"

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"a@b.co", "dana.r@example.com"} {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}
	for _, email := range []string{"", "no-at-sign", "two@@example.com", "spaces in@example.com", "no-tld@example"} {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidateDate(t *testing.T) {
	day, err := ValidateDate("2026-03-09")
	if err != nil {
		t.Fatalf("ValidateDate: %v", err)
	}
	if day.Year() != 2026 || day.Month() != 3 || day.Day() != 9 {
		t.Errorf("parsed day = %v", day)
	}

	for _, bad := range []string{"", "09-03-2026", "2026/03/09", "2026-13-01"} {
		if _, err := ValidateDate(bad); err == nil {
			t.Errorf("ValidateDate(%q) = nil, want error", bad)
		}
	}
}

func TestValidateOneOf(t *testing.T) {
	if err := ValidateOneOf("HIGH", "LOW", "MEDIUM", "HIGH"); err != nil {
		t.Errorf("ValidateOneOf allowed value rejected: %v", err)
	}
	if err := ValidateOneOf("URGENT", "LOW", "MEDIUM", "HIGH"); err == nil {
		t.Error("ValidateOneOf accepted a value outside the set")
	}
}
