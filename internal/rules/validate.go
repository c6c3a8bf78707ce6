package rules

import (
	"fmt"
	"strings"
)

// Validation error codes (R100-R199).
const (
	// ErrSchemaViolation covers any constraint rejected by the strict
	// schema (unknown field, wrong type, out-of-range value).
	ErrSchemaViolation = "R100"

	// ErrNotAMapping means the document root was not a mapping.
	ErrNotAMapping = "R101"
)

// ValidationError is one violated path in a rule document.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ValidationErrors aggregates every violation found by the strict
// schema pass. The engine must not be built from rules whose document
// produced a non-empty ValidationErrors.
type ValidationErrors []ValidationError

// Error implements the error interface, listing every violation.
func (errs ValidationErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule document failed validation (%d violation", len(errs))
	if len(errs) != 1 {
		b.WriteString("s")
	}
	b.WriteString("):")
	for _, e := range errs {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}
