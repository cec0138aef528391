package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError collects per-field problems found while validating a
// config or request
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// Error lists fields in name order so messages are stable
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", name, strings.Join(v.Fields[name], ", "))
	}
	return b.String()
}

// ValidationBuilder records field problems; Build turns them into one
// InvalidArgument error with the fields under the "validation_errors" meta.
type ValidationBuilder struct {
	fields map[string][]string
}

func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{fields: map[string][]string{}}
}

func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.fields[field] = append(vb.fields[field], message)
	return vb
}

func (vb *ValidationBuilder) Fieldf(field, format string, args ...interface{}) *ValidationBuilder {
	return vb.Field(field, fmt.Sprintf(format, args...))
}

func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

func (vb *ValidationBuilder) InvalidField(field, reason string) *ValidationBuilder {
	return vb.Fieldf(field, "is invalid: %s", reason)
}

// HasErrors reports whether anything was recorded
func (vb *ValidationBuilder) HasErrors() bool {
	return len(vb.fields) > 0
}

// Build returns nil when nothing was recorded
func (vb *ValidationBuilder) Build() error {
	if !vb.HasErrors() {
		return nil
	}
	v := &ValidationError{Fields: vb.fields}
	return InvalidArgument(v.Error()).WithMeta("validation_errors", v.Fields)
}

// ValidateRequired records field as missing when value is blank
func ValidateRequired(field, value string, vb *ValidationBuilder) {
	if strings.TrimSpace(value) == "" {
		vb.RequiredField(field)
	}
}

// ValidatePositive records field as invalid unless value > 0. Room, unit
// and item ids all start at 1.
func ValidatePositive(field string, value int, vb *ValidationBuilder) {
	if value <= 0 {
		vb.InvalidField(field, "must be positive")
	}
}
