package util

import (
	"testing"

	"github.com/gestaozabele/coleta/internal/apperr"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "maria.silva@prefeitura.gov.br", " ana@coleta.org "}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("expected %q to be valid: %v", email, err)
		}
	}
	invalid := []string{"", "semarroba", "a@b", "a b@c.com", "@c.com"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Fatalf("expected %q to be invalid", email)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	for _, phone := range []string{"+5511987654321", "11987654321", "7"} {
		if err := ValidatePhone(phone); err != nil {
			t.Fatalf("expected %q to be valid: %v", phone, err)
		}
	}
	for _, phone := range []string{"0119876", "+0123", "(11) 98765-4321", "", "12345678901234567"} {
		if err := ValidatePhone(phone); err == nil {
			t.Fatalf("expected %q to be invalid", phone)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Fatal("expected short password to fail")
	}
	if err := ValidatePassword("secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMinLengthTrims(t *testing.T) {
	if MinLength("  A ", 2) {
		t.Fatal("expected trimmed single char to fail")
	}
	if !MinLength("Zé", 2) {
		t.Fatal("expected two runes to pass")
	}
}

func TestValidCoordinates(t *testing.T) {
	if !ValidCoordinates(-90, 180) || !ValidCoordinates(0, 0) {
		t.Fatal("expected boundary coordinates to be valid")
	}
	if ValidCoordinates(90.1, 0) || ValidCoordinates(0, -180.1) {
		t.Fatal("expected out of range coordinates to be invalid")
	}
}

func TestCheckerCollectsDetails(t *testing.T) {
	var c Checker
	c.Check(true, "never")
	if err := c.Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	c.Check(false, "Bin code is required and must be at least 3 characters")
	c.Check(false, "Capacity must be between 50 and 10000 liters")

	appErr := apperr.As(c.Err())
	if appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", appErr.Kind)
	}
	if len(appErr.Details) != 2 {
		t.Fatalf("expected 2 details, got %v", appErr.Details)
	}
}

func TestParseID(t *testing.T) {
	if _, ok := ParseID("not-a-uuid"); ok {
		t.Fatal("expected invalid id")
	}
	if _, ok := ParseID("5b0f0cf4-8a8f-4a4e-9d5a-3f3f1b0c7e11"); !ok {
		t.Fatal("expected valid id")
	}
}
