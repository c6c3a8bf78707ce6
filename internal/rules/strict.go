package rules

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ValidateStrict checks a decoded interactions document against the
// embedded CUE schema. It returns nil when the document is clean, or a
// ValidationErrors aggregating every violated path - callers get the
// full list in one pass, not just the first problem.
//
// The permissive parser accepts documents this pass rejects; a caller
// that enables strict validation must not build an engine from a
// rejected document.
func ValidateStrict(doc any) error {
	root, ok := doc.(map[string]any)
	if !ok {
		return ValidationErrors{{
			Message: fmt.Sprintf("interactions document must be a mapping, got %T", doc),
			Code:    ErrNotAMapping,
		}}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		// The schema is embedded and tested; a compile failure is a
		// build defect, not an author error.
		return fmt.Errorf("compile embedded schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Interactions"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup #Interactions: %w", err)
	}

	data := ctx.Encode(root)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	unified := def.Unify(data)
	err := unified.Validate(cue.Concrete(false))
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	for _, ce := range cueerrors.Errors(err) {
		errs = append(errs, ValidationError{
			Path:    strings.Join(ce.Path(), "."),
			Message: cueMessage(ce),
			Code:    ErrSchemaViolation,
		})
	}
	if len(errs) == 0 {
		errs = append(errs, ValidationError{
			Message: err.Error(),
			Code:    ErrSchemaViolation,
		})
	}
	return errs
}

// cueMessage formats a CUE error's message without its position prefix.
func cueMessage(ce cueerrors.Error) string {
	format, args := ce.Msg()
	return fmt.Sprintf(format, args...)
}
