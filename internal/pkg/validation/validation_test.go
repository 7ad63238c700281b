package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

type sample struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Confirm     string `json:"confirmPassword" validate:"eqfield=Password"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	DisplayName string `validate:"max=5"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	in := sample{Email: "a@x.com", Password: "pw", Confirm: "pw"}
	if err := v.Validate(in); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_CollectsFieldMessages(t *testing.T) {
	v := New()
	err := v.Validate(sample{Email: "nope", Confirm: "x", Website: "not a url", DisplayName: "too long"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"email must be a valid email",
		"password is required",
		"confirmPassword must match Password",
		"website must be a valid URL",
		"DisplayName must be at most 5 characters",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestValidate_PointerFields(t *testing.T) {
	bad := "not-an-email"
	err := New().Validate(domain.ProfileUpdate{Email: &bad})
	if !errors.Is(err, domain.ErrValidation) || !strings.Contains(err.Error(), "email") {
		t.Fatalf("expected email validation error, got %v", err)
	}
	if err := New().Validate(domain.ProfileUpdate{}); err != nil {
		t.Fatalf("empty update should validate: %v", err)
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if err := New().Validate(42); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
