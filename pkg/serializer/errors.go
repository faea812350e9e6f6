package serializer

import (
	"sort"
	"strings"
)

// NonFieldErrors is the key of errors that don't belong to a single field.
const NonFieldErrors = "non_field_errors"

// Errors maps a field name to its validation messages.
type Errors map[string][]string

// Add appends a message to a field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has any message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Error implements error.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(f)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e[f], ", "))
	}
	return sb.String()
}
