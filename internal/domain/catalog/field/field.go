package field

import (
	"fmt"

	"github.com/bvm-labs/catalogchat/internal/domain"
)

// Definition is an immutable value object describing a catalog attribute.
// Identity is the exact name string (plus locale for localized attributes);
// matching is case- and punctuation-sensitive, never fuzzy.
type Definition struct {
	name      string
	localized bool
	locale    string
}

// New validates and creates a plain attribute definition.
func New(name string) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("attribute name is required")
	}
	return Definition{name: name}, nil
}

// NewLocalized validates and creates a localized attribute definition.
func NewLocalized(name, locale string) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("attribute name is required")
	}
	if locale == "" {
		return Definition{}, fmt.Errorf("locale is required for localized attribute %q", name)
	}
	return Definition{name: name, localized: true, locale: locale}, nil
}

// Name returns the attribute name.
func (d Definition) Name() string { return d.name }

// Localized reports whether the attribute is locale-scoped.
func (d Definition) Localized() bool { return d.localized }

// Locale returns the locale of a localized attribute, empty otherwise.
func (d Definition) Locale() string { return d.locale }

// Key returns the registry identity: the name itself, or a two-part
// name@locale key for localized attributes.
func (d Definition) Key() string {
	if d.localized {
		return d.name + "@" + d.locale
	}
	return d.name
}

// Token renders the field position of a raw filter clause, unencoded.
// Plain attributes quote the name; localized attributes use the
// localized_property('<Name>', <locale>) form.
func (d Definition) Token() string {
	if d.localized {
		return fmt.Sprintf("localized_property('%s', %s)", d.name, d.locale)
	}
	return "'" + d.name + "'"
}

// Registry is an ordered set of attribute definitions with exact-match lookup.
type Registry struct {
	order []string
	byKey map[string]Definition
}

// NewRegistry creates a registry from an ordered definition list.
// Duplicate keys keep their first registration.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{byKey: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		key := d.Key()
		if _, ok := r.byKey[key]; ok {
			continue
		}
		r.byKey[key] = d
		r.order = append(r.order, key)
	}
	return r
}

// Default returns the registry of the standard product attribute set.
func Default() *Registry {
	plain := []string{
		"Product Name", "Class", "Brand", "Color", "Price",
		"Description", "SKU", "Category", "Material", "Status",
	}
	defs := make([]Definition, 0, len(plain)+2)
	for _, name := range plain {
		d, _ := New(name)
		defs = append(defs, d)
	}
	for _, locale := range []string{"en-US", "de-DE"} {
		d, _ := NewLocalized("Description", locale)
		defs = append(defs, d)
	}
	return NewRegistry(defs...)
}

// Resolve looks up a plain attribute by exact name.
func (r *Registry) Resolve(name string) (Definition, error) {
	d, ok := r.byKey[name]
	if !ok {
		return Definition{}, fmt.Errorf("attribute %q: %w", name, domain.ErrFieldNotFound)
	}
	return d, nil
}

// ResolveLocalized looks up a localized attribute by exact name and locale.
func (r *Registry) ResolveLocalized(name, locale string) (Definition, error) {
	d, ok := r.byKey[name+"@"+locale]
	if !ok {
		return Definition{}, fmt.Errorf("attribute %q locale %q: %w", name, locale, domain.ErrFieldNotFound)
	}
	return d, nil
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, len(r.order))
	for i, key := range r.order {
		defs[i] = r.byKey[key]
	}
	return defs
}

// Ref is a field reference inside a filter condition: either an attribute
// resolved through the catalog, or a raw name the upstream interpreter has
// explicitly marked as trusted. Trusted names bypass the registry and are
// serialized verbatim, case-sensitive.
type Ref struct {
	def     Definition
	raw     string
	trusted bool
}

// FromCatalog creates a reference to a resolved catalog attribute.
func FromCatalog(d Definition) Ref {
	return Ref{def: d}
}

// Trusted creates a pass-through reference to a raw attribute name.
func Trusted(raw string) Ref {
	return Ref{raw: raw, trusted: true}
}

// IsTrusted reports whether the reference bypasses the catalog.
func (r Ref) IsTrusted() bool { return r.trusted }

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool { return !r.trusted && r.def == Definition{} }

// Token renders the field position of a raw filter clause, unencoded.
func (r Ref) Token() string {
	if r.trusted {
		return "'" + r.raw + "'"
	}
	return r.def.Token()
}
