package confirm

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldResult is the outcome of validating a single field. An empty Message means the field is valid.
type FieldResult struct {
	Field   string
	Message string
}

// OK reports whether the field passed validation.
func (r FieldResult) OK() bool { return r.Message == "" }

// Validation collects the per-field results of a submission.
type Validation struct {
	Identifier FieldResult
	Code       FieldResult
}

// OK reports whether every field passed.
func (v Validation) OK() bool {
	return v.Identifier.OK() && v.Code.OK()
}

// Errors returns the failing fields keyed by form field name.
func (v Validation) Errors() map[string]string {
	errs := make(map[string]string)
	for _, r := range []FieldResult{v.Identifier, v.Code} {
		if !r.OK() {
			errs[r.Field] = r.Message
		}
	}
	return errs
}

// ValidateIdentifier requires a syntactically valid email address.
func ValidateIdentifier(value, message string) FieldResult {
	if message == "" {
		message = DefaultIdentifierMessage
	}
	return check(IdentifierName, value, "required,email", message)
}

// ValidateCode requires a non-empty code. No format is enforced.
func ValidateCode(value, message string) FieldResult {
	if message == "" {
		message = DefaultCodeMessage
	}
	return check(CodeName, value, "required", message)
}

func check(field, value, tag, message string) FieldResult {
	if err := validate.Var(value, tag); err != nil {
		return FieldResult{Field: field, Message: message}
	}
	return FieldResult{Field: field}
}
