package components

import (
	"sort"
	"strings"

	"github.com/nfrund/confirmflow/internal/confirm"
	"github.com/nfrund/confirmflow/internal/view"
	"github.com/nfrund/confirmflow/internal/view/dto/auth"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Flashes renders transient notifications. Errors are announced to screen readers.
func Flashes(f view.FlashData) g.Node {
	if f.Empty() {
		return nil
	}
	return h.Div(
		h.ID("notifications"),
		g.Map(f.Error, func(msg string) g.Node {
			return h.Div(h.Class("message message-error"), h.Role("alert"), g.Text(msg))
		}),
		g.Map(f.Success, func(msg string) g.Node {
			return h.Div(h.Class("message message-success"), h.Role("status"), g.Text(msg))
		}),
	)
}

// Input renders a text field from its merged options. Options prefixed with
// "data-" or "aria-" are passed through as attributes.
func Input(f auth.Field) g.Node {
	opts := f.Options
	name := opts.String(confirm.OptName)
	inputType := opts.String(confirm.OptType)
	if inputType == "" {
		inputType = "text"
	}
	prefix := opts.String(confirm.OptPrefix)
	itemClass := "form-item"
	if f.Error != "" {
		itemClass += " has-error"
	}

	return h.Div(
		h.Class(itemClass),
		h.Span(
			h.Class(joinClasses("input-affix", sizeClass(opts))),
			g.If(prefix != "", h.I(h.Class("icon icon-"+prefix), h.Aria("hidden", "true"))),
			h.Input(
				h.Type(inputType),
				h.ID(name),
				h.Name(name),
				h.Value(f.Value),
				g.If(opts.String(confirm.OptPlaceholder) != "", h.Placeholder(opts.String(confirm.OptPlaceholder))),
				g.If(opts.Bool(confirm.OptDisabled), h.Disabled()),
				g.If(f.Error != "", h.Aria("invalid", "true")),
				passthrough(opts),
			),
		),
		g.If(f.Error != "", h.Div(h.Class("form-item-explain"), g.Text(f.Error))),
	)
}

// SubmitButton renders the submit control from its merged options.
func SubmitButton(opts confirm.Options) g.Node {
	htmlType := opts.String(confirm.OptHTMLType)
	if htmlType == "" {
		htmlType = "submit"
	}
	role := opts.String(confirm.OptType)
	if role == "" {
		role = "default"
	}
	return h.Button(
		h.Type(htmlType),
		h.Class(joinClasses("btn", "btn-"+role, sizeClass(opts), opts.String(confirm.OptClassName))),
		g.If(opts.Bool(confirm.OptDisabled), h.Disabled()),
		g.If(opts.Bool(confirm.OptLoading), h.Aria("busy", "true")),
		passthrough(opts),
		g.Text(opts.String(confirm.OptLabel)),
	)
}

func sizeClass(opts confirm.Options) string {
	if size := opts.String(confirm.OptSize); size != "" {
		return "size-" + size
	}
	return ""
}

func passthrough(opts confirm.Options) g.Node {
	var keys []string
	for key := range opts {
		if strings.HasPrefix(key, "data-") || strings.HasPrefix(key, "aria-") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var attrs g.Group
	for _, key := range keys {
		if s, ok := opts[key].(string); ok {
			attrs = append(attrs, g.Attr(key, s))
		}
	}
	return attrs
}

func joinClasses(classes ...string) string {
	out := classes[:0:0]
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}
