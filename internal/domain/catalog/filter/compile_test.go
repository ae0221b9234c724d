package filter

import (
	"net/url"
	"strings"
	"testing"

	"github.com/bvm-labs/catalogchat/internal/domain/catalog/field"
)

func mustField(t *testing.T, name string) field.Ref {
	t.Helper()
	d, err := field.New(name)
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}
	return field.FromCatalog(d)
}

func mustCondition(t *testing.T, ref field.Ref, op Operator, value string, negated bool) Condition {
	t.Helper()
	c, err := NewCondition(ref, op, value, negated)
	if err != nil {
		t.Fatalf("NewCondition(%v, %q): %v", op, value, err)
	}
	return c
}

func compileOne(t *testing.T, c Condition) string {
	t.Helper()
	e, err := NewExpression(c)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	return Compile(e)
}

func TestCompile_OperatorTable(t *testing.T) {
	tests := []struct {
		name    string
		fld     string
		op      Operator
		value   string
		negated bool
		want    string
	}{
		{"equals", "Class", Equals, "PJ", false, "filter=%3D%27Class%27%3A%27PJ%27"},
		{"equals negated", "Class", Equals, "PJ", true, "filter=%3D%27Class%27%3A%5E%27PJ%27"},
		{"has any value", "Color", HasAnyValue, "", false, "filter=%3D%27Color%27%3A%2A"},
		{"has no value", "Color", HasNoValue, "", false, "filter=%3D%27Color%27%3A%5E%2A"},
		{"contains", "Brand", Contains, "acme", false, "filter=%3D%27Brand%27%3Acontains%28%27acme%27%29"},
		{"contains negated", "Brand", Contains, "acme", true, "filter=%3D%27Brand%27%3A%5Econtains%28%27acme%27%29"},
		{"starts with", "SKU", StartsWith, "AB", false, "filter=%3D%27SKU%27%3Astarts_with%28%27AB%27%29"},
		{"word starts with", "Product Name", WordStartsWith, "wid", false, "filter=%3D%27Product%20Name%27%3A~%27wid%27"},
		{"is valid", "Price", IsValid, "", false, "filter=%3D%27Price%27%3Avalid%28%29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCondition(t, mustField(t, tt.fld), tt.op, tt.value, tt.negated)
			got := compileOne(t, c)
			if got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_EqualsTitleCasesWords(t *testing.T) {
	tests := []struct {
		value string
		want  string // raw body inside the clause, before encoding
	}{
		{"blue widget", "'Blue Widget'"},
		{"PJ", "'PJ'"},
		{"iPhone", "'IPhone'"},
		{"a b c", "'A B C'"},
	}

	for _, tt := range tests {
		c := mustCondition(t, mustField(t, "Class"), Equals, tt.value, false)
		got := compileOne(t, c)
		decoded := decodeRaw(t, got)
		want := "='Class':" + tt.want
		if decoded != want {
			t.Errorf("value %q: decoded = %q, want %q", tt.value, decoded, want)
		}
	}
}

func TestCompile_MultipleConditionsPreserveOrder(t *testing.T) {
	c1 := mustCondition(t, mustField(t, "Class"), Equals, "PJ", false)
	c2 := mustCondition(t, mustField(t, "Color"), HasAnyValue, "", false)
	c3 := mustCondition(t, mustField(t, "Brand"), Contains, "acme", false)

	e, err := NewExpression(c1, c2, c3)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	got := Compile(e)

	decoded := decodeRaw(t, got)
	want := "='Class':'PJ','Color':*,'Brand':contains('acme')"
	if decoded != want {
		t.Errorf("decoded = %q, want %q", decoded, want)
	}
	if !strings.Contains(got, "%2C") {
		t.Errorf("encoded output %q should join clauses with %%2C", got)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	c1 := mustCondition(t, mustField(t, "Class"), Equals, "PJ", false)
	c2 := mustCondition(t, mustField(t, "Brand"), StartsWith, "Ac", true)
	e, err := NewExpression(c1, c2)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}

	first := Compile(e)
	for i := 0; i < 5; i++ {
		if got := Compile(e); got != first {
			t.Fatalf("run %d: Compile() = %q, want %q", i, got, first)
		}
	}
}

func TestCompile_RoundTrip(t *testing.T) {
	c1 := mustCondition(t, mustField(t, "Product Name"), Contains, "wool socks", false)
	c2 := mustCondition(t, mustField(t, "Price"), IsValid, "", false)
	e, err := NewExpression(c1, c2)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}

	decoded := decodeRaw(t, Compile(e))
	want := "='Product Name':contains('wool socks'),'Price':valid()"
	if decoded != want {
		t.Errorf("decoded = %q, want %q", decoded, want)
	}
}

func TestCompile_EmptyExpression_Sentinel(t *testing.T) {
	e, err := NewExpression()
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if got := Compile(e); got != Sentinel {
		t.Errorf("Compile(empty) = %q, want %q", got, Sentinel)
	}
}

func TestCompile_UnusableConditionsSkipped(t *testing.T) {
	// Equals without a value cannot be serialized.
	noValue := Condition{fieldRef: mustField(t, "Class"), op: Equals}
	usable := mustCondition(t, mustField(t, "Color"), HasAnyValue, "", false)

	e, err := NewExpression(noValue, usable)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	decoded := decodeRaw(t, Compile(e))
	if decoded != "='Color':*" {
		t.Errorf("decoded = %q, want only the usable clause", decoded)
	}

	onlyUnusable, err := NewExpression(noValue)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if got := Compile(onlyUnusable); got != Sentinel {
		t.Errorf("Compile(unusable only) = %q, want %q", got, Sentinel)
	}
}

func TestCompile_LocalizedField(t *testing.T) {
	d, err := field.NewLocalized("Description", "en-US")
	if err != nil {
		t.Fatalf("NewLocalized: %v", err)
	}
	c := mustCondition(t, field.FromCatalog(d), Contains, "soft", false)

	decoded := decodeRaw(t, compileOne(t, c))
	want := "=localized_property('Description', en-US):contains('soft')"
	if decoded != want {
		t.Errorf("decoded = %q, want %q", decoded, want)
	}
}

func TestCompile_TrustedFieldVerbatim(t *testing.T) {
	c := mustCondition(t, field.Trusted("custom:Weird Field/Name"), Equals, "X", false)

	decoded := decodeRaw(t, compileOne(t, c))
	want := "='custom:Weird Field/Name':'X'"
	if decoded != want {
		t.Errorf("decoded = %q, want %q", decoded, want)
	}
}

// decodeRaw strips the filter= prefix and reverses the percent-encoding.
func decodeRaw(t *testing.T, compiled string) string {
	t.Helper()
	payload := strings.TrimPrefix(compiled, Prefix)
	if payload == compiled {
		t.Fatalf("compiled output %q lacks the %q prefix", compiled, Prefix)
	}
	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		t.Fatalf("QueryUnescape(%q): %v", payload, err)
	}
	return decoded
}
