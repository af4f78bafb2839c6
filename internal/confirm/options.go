package confirm

import (
	"maps"
	"strings"
)

// FieldKind identifies one of the three input surfaces of the confirmation form.
type FieldKind string

const (
	IdentifierField FieldKind = "identifier"
	CodeField       FieldKind = "code"
	SubmitField     FieldKind = "submit"
)

// Option names understood by the form renderer.
const (
	OptPrefix      = "prefix"
	OptSize        = "size"
	OptPlaceholder = "placeholder"
	OptMessage     = "message"
	OptOnChange    = "onChange"
	OptName        = "name"
	OptDisabled    = "disabled"
	OptLabel       = "label"
	OptType        = "type"
	OptClassName   = "className"
	OptLoading     = "loading"
	OptHTMLType    = "htmlType"
)

// Form field names used for binding submitted values.
const (
	IdentifierName = "email"
	CodeName       = "code"
)

const (
	DefaultIdentifierMessage = "Please enter your email!"
	DefaultCodeMessage       = "Please enter secret code!"

	// FullWidthClass is always kept on the submit button, caller classes are appended to it.
	FullWidthClass = "confirm-full-width"
)

// forcedKeys are re-applied after caller overrides so that a caller can
// restyle or relabel a field but never rename it, unhook its change handler,
// or unlock a prefilled identifier.
var forcedKeys = map[FieldKind][]string{
	IdentifierField: {OptOnChange, OptName, OptDisabled},
	CodeField:       {OptOnChange, OptName},
	SubmitField:     {OptClassName, OptLoading, OptDisabled, OptHTMLType},
}

// ForcedKeys returns the option names that overrides cannot change for kind.
func ForcedKeys(kind FieldKind) []string {
	return append([]string(nil), forcedKeys[kind]...)
}

// ChangeHandler receives a field value whenever the form binds input.
type ChangeHandler func(name, value string)

// Options is a bag of named rendering and validation options for a single field.
type Options map[string]any

// String returns the option as a string, or "" when unset or of another type.
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Bool returns the option as a bool, or false when unset or of another type.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// ChangeHandler returns the bound change handler, if any.
func (o Options) ChangeHandler() ChangeHandler {
	switch h := o[OptOnChange].(type) {
	case ChangeHandler:
		return h
	case func(name, value string):
		return h
	}
	return nil
}

// Overrides holds the caller-supplied option bags for the three surfaces.
type Overrides struct {
	Identifier Options `yaml:"identifier"`
	Code       Options `yaml:"code"`
	Submit     Options `yaml:"submit"`
}

// BuildConfig merges options for kind in three steps: defaults, then caller
// overrides, then the forced values for the keys listed in forcedKeys.
func BuildConfig(kind FieldKind, defaults, overrides, forced Options) Options {
	out := make(Options, len(defaults)+len(overrides)+len(forced))
	maps.Copy(out, defaults)
	maps.Copy(out, overrides)
	for _, key := range forcedKeys[kind] {
		out[key] = forced[key]
	}
	return out
}

func identifierDefaults() Options {
	return Options{
		OptPrefix:      "user",
		OptSize:        "large",
		OptPlaceholder: "Email",
		OptMessage:     DefaultIdentifierMessage,
	}
}

func codeDefaults() Options {
	return Options{
		OptPrefix:      "lock",
		OptSize:        "large",
		OptPlaceholder: "Code",
		OptMessage:     DefaultCodeMessage,
	}
}

func submitDefaults() Options {
	return Options{
		OptSize:      "large",
		OptType:      "primary",
		OptLabel:     "Submit",
		OptClassName: FullWidthClass,
	}
}

// joinClassNames appends the caller class to the base class.
func joinClassNames(base string, extra any) string {
	s, _ := extra.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return base
	}
	return base + " " + s
}
