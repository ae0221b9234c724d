package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bvm-labs/catalogchat/internal/domain"
	"github.com/bvm-labs/catalogchat/internal/domain/catalog/field"
	"github.com/bvm-labs/catalogchat/internal/domain/catalog/filter"
)

// Kind classifies a validated intent.
type Kind string

// Intent kinds.
const (
	KindLookup     Kind = "lookup"     // direct fetch by product identifier
	KindSearch     Kind = "search"     // fetch by compiled filter query
	KindUnresolved Kind = "unresolved" // no usable structured result
)

// Intent is the validated, typed outcome of interpreting one user message.
type Intent struct {
	Kind   Kind
	ID     string // set for KindLookup
	Filter string // set for KindSearch: full filter=-prefixed encoded query
}

// identifierRe matches the catalog identifier shape: alphanumeric, length >= 12.
var identifierRe = regexp.MustCompile(`^[A-Za-z0-9]{12,}$`)

// defaultPrompt is the built-in system prompt for the interpreter model.
const defaultPrompt = `You turn a shopper's message into a product catalog query.
Reply with exactly one of:
1. A bare product identifier (alphanumeric, 12+ characters) if the message names one.
2. A JSON object {"conditions":[{"field":"...","operator":"...","value":"...","negated":false,"trusted":false,"locale":""}]}
   using operators equals, has_any_value, has_no_value, contains, starts_with, word_starts_with, is_valid.
3. The word NOT_FOUND if the message cannot be mapped to a catalog query.
No prose, no markdown.`

// Service validates language model output into typed intents.
type Service struct {
	interpreter Interpreter
	registry    *field.Registry
	prompt      string
}

// New creates an intent service over the default attribute registry.
func New(interpreter Interpreter, registry *field.Registry) *Service {
	return &Service{interpreter: interpreter, registry: registry, prompt: defaultPrompt}
}

// WithPrompt overrides the built-in interpreter system prompt.
func (s *Service) WithPrompt(prompt string) *Service {
	if prompt != "" {
		s.prompt = prompt
	}
	return s
}

// Resolve interprets one user message into a typed Intent.
func (s *Service) Resolve(ctx context.Context, message string) (Intent, error) {
	out, err := s.interpreter.Interpret(ctx, s.prompt, message)
	if err != nil {
		return Intent{}, fmt.Errorf("resolve intent: %w", err)
	}
	return s.Validate(out)
}

// Validate pattern-matches raw collaborator output against the accepted
// shapes: the NOT_FOUND sentinel, a bare identifier, an already-compiled
// filter=-prefixed query, or a JSON intent object that is resolved against
// the field catalog and compiled. Anything else is Unresolved.
func (s *Service) Validate(raw string) (Intent, error) {
	out := strings.TrimSpace(raw)

	switch {
	case out == filter.Sentinel:
		return Intent{Kind: KindUnresolved}, nil
	case identifierRe.MatchString(out):
		return Intent{Kind: KindLookup, ID: out}, nil
	case strings.HasPrefix(out, filter.Prefix):
		return Intent{Kind: KindSearch, Filter: out}, nil
	}

	expr, err := s.parseJSONIntent(out)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCondition) {
			return Intent{}, err
		}
		return Intent{Kind: KindUnresolved}, nil
	}

	compiled := filter.Compile(expr)
	if compiled == filter.Sentinel {
		return Intent{Kind: KindUnresolved}, nil
	}
	return Intent{Kind: KindSearch, Filter: compiled}, nil
}

// jsonIntent is the wire shape of a structured model reply.
type jsonIntent struct {
	Conditions []jsonCondition `json:"conditions"`
}

type jsonCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Negated  bool   `json:"negated"`
	Trusted  bool   `json:"trusted"`
	Locale   string `json:"locale"`
}

// parseJSONIntent builds a filter expression from a JSON intent object.
// Conditions whose field or operator do not resolve are dropped; illegal
// negation compositions are hard errors so nothing ambiguous gets serialized.
func (s *Service) parseJSONIntent(out string) (filter.Expression, error) {
	var ji jsonIntent
	if err := json.Unmarshal([]byte(out), &ji); err != nil {
		return filter.Expression{}, fmt.Errorf("not a structured intent: %w", err)
	}

	conditions := make([]filter.Condition, 0, len(ji.Conditions))
	for _, jc := range ji.Conditions {
		ref, ok := s.resolveRef(jc)
		if !ok {
			continue
		}
		op, err := filter.ParseOperator(jc.Operator)
		if err != nil {
			continue
		}
		cond, err := filter.NewCondition(ref, op, jc.Value, jc.Negated)
		if err != nil {
			return filter.Expression{}, err
		}
		conditions = append(conditions, cond)
	}

	return filter.NewExpression(conditions...)
}

// resolveRef maps a wire condition to a field reference. Trusted names
// bypass the catalog; everything else requires an exact registry match.
func (s *Service) resolveRef(jc jsonCondition) (field.Ref, bool) {
	if jc.Field == "" {
		return field.Ref{}, false
	}
	if jc.Trusted {
		return field.Trusted(jc.Field), true
	}
	if jc.Locale != "" {
		def, err := s.registry.ResolveLocalized(jc.Field, jc.Locale)
		if err != nil {
			return field.Ref{}, false
		}
		return field.FromCatalog(def), true
	}
	def, err := s.registry.Resolve(jc.Field)
	if err != nil {
		return field.Ref{}, false
	}
	return field.FromCatalog(def), true
}
