package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bvm-labs/catalogchat/internal/domain"
	"github.com/bvm-labs/catalogchat/internal/domain/catalog/field"
)

// --- Mocks ---

type mockInterpreter struct {
	out        string
	err        error
	lastPrompt string
	lastText   string
}

func (m *mockInterpreter) Interpret(_ context.Context, systemPrompt, userText string) (string, error) {
	m.lastPrompt = systemPrompt
	m.lastText = userText
	return m.out, m.err
}

func newService(out string) (*Service, *mockInterpreter) {
	m := &mockInterpreter{out: out}
	return New(m, field.Default()), m
}

func TestValidate_Sentinel(t *testing.T) {
	s, _ := newService("")

	it, err := s.Validate("NOT_FOUND")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if it.Kind != KindUnresolved {
		t.Errorf("Kind = %q, want %q", it.Kind, KindUnresolved)
	}
}

func TestValidate_BareIdentifier(t *testing.T) {
	s, _ := newService("")

	tests := []struct {
		raw  string
		want Kind
	}{
		{"ABC123456789", KindLookup},          // exactly 12 alphanumerics
		{"  ABC123456789\n", KindLookup},      // surrounding whitespace trimmed
		{"a1b2c3d4e5f6g7h8", KindLookup},      // longer
		{"ABC12345678", KindUnresolved},       // 11 chars, too short
		{"ABC1234567-9", KindUnresolved},      // punctuation
		{"show me red shoes", KindUnresolved}, // free text
	}

	for _, tt := range tests {
		it, err := s.Validate(tt.raw)
		if err != nil {
			t.Errorf("Validate(%q): %v", tt.raw, err)
			continue
		}
		if it.Kind != tt.want {
			t.Errorf("Validate(%q).Kind = %q, want %q", tt.raw, it.Kind, tt.want)
		}
		if tt.want == KindLookup && it.ID != strings.TrimSpace(tt.raw) {
			t.Errorf("Validate(%q).ID = %q", tt.raw, it.ID)
		}
	}
}

func TestValidate_PrecompiledFilterPassthrough(t *testing.T) {
	s, _ := newService("")
	raw := "filter=%3D%27Class%27%3A%27PJ%27"

	it, err := s.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if it.Kind != KindSearch || it.Filter != raw {
		t.Errorf("intent = %+v, want search passthrough", it)
	}
}

func TestValidate_JSONIntentCompiled(t *testing.T) {
	s, _ := newService("")
	raw := `{"conditions":[{"field":"Class","operator":"equals","value":"PJ"}]}`

	it, err := s.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if it.Kind != KindSearch {
		t.Fatalf("Kind = %q, want %q", it.Kind, KindSearch)
	}
	if want := "filter=%3D%27Class%27%3A%27PJ%27"; it.Filter != want {
		t.Errorf("Filter = %q, want %q", it.Filter, want)
	}
}

func TestValidate_JSONIntentLocalizedAndTrusted(t *testing.T) {
	s, _ := newService("")
	raw := `{"conditions":[
		{"field":"Description","operator":"contains","value":"soft","locale":"en-US"},
		{"field":"custom:Fit","operator":"has_any_value","trusted":true}
	]}`

	it, err := s.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if it.Kind != KindSearch {
		t.Fatalf("Kind = %q, want %q", it.Kind, KindSearch)
	}
	if !strings.Contains(it.Filter, "localized_property") {
		t.Errorf("Filter = %q, want localized clause", it.Filter)
	}
}

func TestValidate_UnknownFieldsDropped(t *testing.T) {
	s, _ := newService("")

	// One unknown field among known ones: the unknown clause is dropped.
	raw := `{"conditions":[
		{"field":"Nonexistent","operator":"equals","value":"x"},
		{"field":"Color","operator":"has_any_value"}
	]}`
	it, err := s.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if it.Kind != KindSearch {
		t.Fatalf("Kind = %q, want %q", it.Kind, KindSearch)
	}
	if strings.Contains(it.Filter, "Nonexistent") {
		t.Errorf("Filter = %q, unknown field leaked through", it.Filter)
	}

	// Nothing resolvable compiles to the sentinel and stays unresolved.
	raw = `{"conditions":[{"field":"Nonexistent","operator":"equals","value":"x"}]}`
	it, err = s.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if it.Kind != KindUnresolved {
		t.Errorf("Kind = %q, want %q", it.Kind, KindUnresolved)
	}
}

func TestValidate_IllegalNegationRejected(t *testing.T) {
	s, _ := newService("")
	raw := `{"conditions":[{"field":"Color","operator":"has_no_value","negated":true}]}`

	_, err := s.Validate(raw)
	if !errors.Is(err, domain.ErrInvalidCondition) {
		t.Errorf("error = %v, want ErrInvalidCondition", err)
	}
}

func TestValidate_GarbageUnresolved(t *testing.T) {
	s, _ := newService("")

	for _, raw := range []string{"", "{broken json", "sure! here are results:", "[]"} {
		it, err := s.Validate(raw)
		if err != nil {
			t.Errorf("Validate(%q): %v", raw, err)
			continue
		}
		if it.Kind != KindUnresolved {
			t.Errorf("Validate(%q).Kind = %q, want %q", raw, it.Kind, KindUnresolved)
		}
	}
}

func TestResolve_PropagatesInterpreterError(t *testing.T) {
	s, m := newService("")
	m.err = domain.ErrInterpreterError

	_, err := s.Resolve(context.Background(), "red shoes")
	if !errors.Is(err, domain.ErrInterpreterError) {
		t.Errorf("error = %v, want ErrInterpreterError", err)
	}
}

func TestResolve_UsesConfiguredPrompt(t *testing.T) {
	s, m := newService("NOT_FOUND")
	s.WithPrompt("custom prompt")

	if _, err := s.Resolve(context.Background(), "hello"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.lastPrompt != "custom prompt" {
		t.Errorf("prompt = %q, want custom prompt", m.lastPrompt)
	}
	if m.lastText != "hello" {
		t.Errorf("userText = %q, want hello", m.lastText)
	}
}
