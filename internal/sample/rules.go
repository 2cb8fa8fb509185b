package sample

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Component ids used by the manual sample configuration.
const (
	FieldSampleName     = "sample_name"
	FieldProteinAcronym = "protein_acronym"
)

const (
	RequiredMsg       = "This field is required"
	DefaultPatternMsg = "Characters allowed: A-Z a-z 0-9 _+:-"
)

// DefaultPattern accepts word characters plus "+:-".
var DefaultPattern = regexp.MustCompile(`^[\w+:-]*$`)

var defaultLabels = map[string]string{
	FieldSampleName:     "Sample name",
	FieldProteinAcronym: "Protein acronym",
}

// FieldRule constrains a single form field. A nil MaxLength is unbounded;
// a limit of 0 is a real limit.
type FieldRule struct {
	Label      string
	Pattern    *regexp.Regexp
	PatternMsg string
	MaxLength  *int
}

// WithMaxLength returns a copy of r limited to n characters.
func (r FieldRule) WithMaxLength(n int) FieldRule {
	r.MaxLength = &n
	return r
}

// RuleSource is the raw, uncompiled form of a FieldRule as it appears in
// configuration. Empty members fall back to defaults.
type RuleSource struct {
	Label      string
	Pattern    string
	PatternMsg string
	MaxLength  *int
}

// DefaultRule returns the rule used when nothing is configured for id.
func DefaultRule(id string) FieldRule {
	label, ok := defaultLabels[id]
	if !ok {
		label = "Name"
	}
	return FieldRule{
		Label:      label,
		Pattern:    DefaultPattern,
		PatternMsg: DefaultPatternMsg,
	}
}

// CompileRule resolves src over the defaults for id.
func CompileRule(id string, src RuleSource) (FieldRule, error) {
	r := DefaultRule(id)
	if src.Label != "" {
		r.Label = src.Label
	}
	if src.Pattern != "" {
		re, err := regexp.Compile(src.Pattern)
		if err != nil {
			return DefaultRule(id), fmt.Errorf("compile pattern for %s: %w", id, err)
		}
		r.Pattern = re
	}
	if src.PatternMsg != "" {
		r.PatternMsg = src.PatternMsg
	}
	if src.MaxLength != nil {
		if *src.MaxLength < 0 {
			return DefaultRule(id), fmt.Errorf("max length for %s: %d is negative", id, *src.MaxLength)
		}
		r = r.WithMaxLength(*src.MaxLength)
	}
	return r, nil
}

// ErrorKind names the rule a value failed.
type ErrorKind string

const (
	ErrRequired  ErrorKind = "required"
	ErrMaxLength ErrorKind = "maxLength"
	ErrPattern   ErrorKind = "pattern"
)

// FieldError is the single inline message shown beside a field.
type FieldError struct {
	Kind    ErrorKind
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Validate checks value against r and reports the first failing rule:
// required, then max length, then pattern. It returns nil when value passes.
func (r FieldRule) Validate(value string) *FieldError {
	if value == "" {
		return &FieldError{Kind: ErrRequired, Message: RequiredMsg}
	}
	if r.MaxLength != nil && utf8.RuneCountInString(value) > *r.MaxLength {
		return &FieldError{Kind: ErrMaxLength, Message: fmt.Sprintf("Max %d characters", *r.MaxLength)}
	}
	pattern := r.Pattern
	if pattern == nil {
		pattern = DefaultPattern
	}
	if !pattern.MatchString(value) {
		msg := r.PatternMsg
		if msg == "" {
			msg = DefaultPatternMsg
		}
		return &FieldError{Kind: ErrPattern, Message: msg}
	}
	return nil
}

// Rules pairs the two manual sample field rules.
type Rules struct {
	SampleName     FieldRule
	ProteinAcronym FieldRule
}

// DefaultRules returns both fields with their default rules.
func DefaultRules() Rules {
	return Rules{
		SampleName:     DefaultRule(FieldSampleName),
		ProteinAcronym: DefaultRule(FieldProteinAcronym),
	}
}

// Errors holds per-field validation results; nil means valid.
type Errors struct {
	SampleName     *FieldError
	ProteinAcronym *FieldError
}

// OK reports whether both fields passed.
func (e Errors) OK() bool {
	return e.SampleName == nil && e.ProteinAcronym == nil
}

// Validate checks both params against the rules.
func (r Rules) Validate(p Params) Errors {
	return Errors{
		SampleName:     r.SampleName.Validate(p.SampleName),
		ProteinAcronym: r.ProteinAcronym.Validate(p.ProteinAcronym),
	}
}

// Build validates p and returns the record only when every field passes.
func (r Rules) Build(p Params) (Record, Errors, bool) {
	errs := r.Validate(p)
	if !errs.OK() {
		return Record{}, errs, false
	}
	return NewRecord(p), errs, true
}
