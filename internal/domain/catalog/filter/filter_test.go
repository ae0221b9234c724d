package filter

import (
	"errors"
	"testing"

	"github.com/bvm-labs/catalogchat/internal/domain"
	"github.com/bvm-labs/catalogchat/internal/domain/catalog/field"
)

func TestParseOperator(t *testing.T) {
	valid := []string{
		"equals", "has_any_value", "has_no_value",
		"contains", "starts_with", "word_starts_with", "is_valid",
	}
	for _, s := range valid {
		if _, err := ParseOperator(s); err != nil {
			t.Errorf("ParseOperator(%q) unexpected error: %v", s, err)
		}
	}

	if _, err := ParseOperator("matches"); !errors.Is(err, domain.ErrInvalidCondition) {
		t.Errorf("ParseOperator(matches) error = %v, want ErrInvalidCondition", err)
	}
}

func TestNewCondition_RejectsZeroField(t *testing.T) {
	_, err := NewCondition(field.Ref{}, Equals, "x", false)
	if !errors.Is(err, domain.ErrInvalidCondition) {
		t.Errorf("error = %v, want ErrInvalidCondition", err)
	}
}

func TestNewCondition_RejectsIllegalNegation(t *testing.T) {
	ref := field.Trusted("Color")

	for _, op := range []Operator{HasNoValue, HasAnyValue, IsValid} {
		_, err := NewCondition(ref, op, "", true)
		if !errors.Is(err, domain.ErrInvalidCondition) {
			t.Errorf("negated %s: error = %v, want ErrInvalidCondition", op, err)
		}
	}

	// Comparison operators negate fine.
	for _, op := range []Operator{Equals, Contains, StartsWith, WordStartsWith} {
		if _, err := NewCondition(ref, op, "x", true); err != nil {
			t.Errorf("negated %s: unexpected error: %v", op, err)
		}
	}
}

func TestNewExpression_TooManyConditions(t *testing.T) {
	ref := field.Trusted("Color")
	conditions := make([]Condition, MaxConditions+1)
	for i := range conditions {
		c, err := NewCondition(ref, HasAnyValue, "", false)
		if err != nil {
			t.Fatalf("NewCondition: %v", err)
		}
		conditions[i] = c
	}

	if _, err := NewExpression(conditions...); !errors.Is(err, domain.ErrInvalidCondition) {
		t.Errorf("error = %v, want ErrInvalidCondition", err)
	}
}

func TestExpression_IsEmpty(t *testing.T) {
	e, err := NewExpression()
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if !e.IsEmpty() {
		t.Error("IsEmpty() = false for empty expression")
	}
}
