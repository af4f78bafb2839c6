package layouts

import (
	"github.com/nfrund/confirmflow/internal/view"
	"github.com/nfrund/confirmflow/web/src/templates/components"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// AppName is shown in every page title.
const AppName = "Confirmflow"

// PageTitle suffixes title with the application name.
func PageTitle(title string) string {
	if title == "" {
		return AppName
	}
	return title + " - " + AppName
}

// Base wraps page content in the HTML document shell. Flashes are shown above the content.
func Base(title, lang string, flashes view.FlashData, content g.Node) g.Node {
	if lang == "" {
		lang = "en"
	}
	return g.Group{
		h.Doctype(
			h.HTML(
				h.Lang(lang),
				h.Head(
					h.Meta(h.Charset("utf-8")),
					h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
					h.TitleEl(g.Text(PageTitle(title))),
					h.Script(h.Src("https://unpkg.com/htmx.org@2.0.4")),
				),
				h.Body(
					h.Class("auth-layout"),
					h.Main(
						h.Class("auth-card"),
						components.Flashes(flashes),
						content,
					),
				),
			),
		),
	}
}
