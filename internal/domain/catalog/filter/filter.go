package filter

import (
	"fmt"

	"github.com/bvm-labs/catalogchat/internal/domain"
	"github.com/bvm-labs/catalogchat/internal/domain/catalog/field"
)

// MaxConditions is the maximum number of conditions per expression.
const MaxConditions = 32

// Operator is the comparison kind of a filter condition.
type Operator string

// Operator constants.
const (
	Equals         Operator = "equals"
	HasAnyValue    Operator = "has_any_value"
	HasNoValue     Operator = "has_no_value"
	Contains       Operator = "contains"
	StartsWith     Operator = "starts_with"
	WordStartsWith Operator = "word_starts_with"
	IsValid        Operator = "is_valid"
)

// ParseOperator maps an operator name to its Operator.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case Equals, HasAnyValue, HasNoValue, Contains, StartsWith, WordStartsWith, IsValid:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operator %q: %w", s, domain.ErrInvalidCondition)
	}
}

// needsValue reports whether the operator requires a comparison value.
func (o Operator) needsValue() bool {
	switch o {
	case Equals, Contains, StartsWith, WordStartsWith:
		return true
	}
	return false
}

// Condition is a single attribute/operator/value clause.
type Condition struct {
	fieldRef field.Ref
	op       Operator
	value    string
	negated  bool
}

// NewCondition validates and creates a filter condition.
// Negation is rejected for presence and validity operators: HasNoValue
// already encodes absence, HasAnyValue negated would silently alias it,
// and a negated IsValid has no defined serialization.
func NewCondition(ref field.Ref, op Operator, value string, negated bool) (Condition, error) {
	if ref.IsZero() {
		return Condition{}, fmt.Errorf("field reference is required: %w", domain.ErrInvalidCondition)
	}
	if _, err := ParseOperator(string(op)); err != nil {
		return Condition{}, err
	}
	if negated {
		switch op {
		case HasNoValue, HasAnyValue, IsValid:
			return Condition{}, fmt.Errorf("operator %s cannot be negated: %w", op, domain.ErrInvalidCondition)
		}
	}
	return Condition{fieldRef: ref, op: op, value: value, negated: negated}, nil
}

// Field returns the field reference.
func (c Condition) Field() field.Ref { return c.fieldRef }

// Op returns the operator.
func (c Condition) Op() Operator { return c.op }

// Value returns the comparison value.
func (c Condition) Value() string { return c.value }

// Negated reports whether the condition is negated.
func (c Condition) Negated() bool { return c.negated }

// usable reports whether the condition can be serialized: operators that
// compare against a value are unusable without one.
func (c Condition) usable() bool {
	return !c.op.needsValue() || c.value != ""
}

// Expression is an ordered conjunction of conditions. Order is preserved
// from the user intent; it affects only serialization, the catalog treats
// the conjunction as an order-independent AND.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates an Expression.
func NewExpression(conditions ...Condition) (Expression, error) {
	if len(conditions) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d): %w", MaxConditions, domain.ErrInvalidCondition)
	}
	return Expression{conditions: conditions}, nil
}

// Conditions returns the conditions in input order.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }
