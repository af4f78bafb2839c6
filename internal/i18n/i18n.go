// Package i18n resolves display strings for the auth pages using
// golang.org/x/text message catalogs.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the languages with translations, the first one is the fallback.
var Supported = []language.Tag{language.English, language.German, language.French}

var translations = map[string]map[language.Tag]string{
	"Resend Code": {
		language.German: "Code erneut senden",
		language.French: "Renvoyer le code",
	},
	"Back to": {
		language.German: "Zurück zur",
		language.French: "Retour à la",
	},
	"Sign In": {
		language.German: "Anmeldung",
		language.French: "Connexion",
	},
	"Confirm Sign Up": {
		language.German: "Registrierung bestätigen",
		language.French: "Confirmer l'inscription",
	},
}

// Catalog holds the translations and the language matcher.
type Catalog struct {
	cat     *catalog.Builder
	matcher language.Matcher
	def     language.Tag
}

// NewCatalog builds the catalog. defaultLang is used when nothing in an
// Accept-Language header matches; an unparsable value falls back to English.
func NewCatalog(defaultLang string) *Catalog {
	def, err := language.Parse(defaultLang)
	if err != nil {
		def = language.English
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byLang := range translations {
		_ = b.SetString(language.English, key, key)
		for tag, text := range byLang {
			_ = b.SetString(tag, key, text)
		}
	}

	return &Catalog{cat: b, matcher: language.NewMatcher(Supported), def: def}
}

// Localizer returns a Localizer for the languages named in an Accept-Language header.
func (c *Catalog) Localizer(acceptLanguage string) *Localizer {
	tag := c.def
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			_, index, confidence := c.matcher.Match(tags...)
			if confidence != language.No {
				tag = Supported[index]
			}
		}
	}
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(c.cat))}
}

// Localizer resolves keys for a single language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// Lookup returns the translation of key, or key itself when there is none.
func (l *Localizer) Lookup(key string) string {
	return l.printer.Sprintf(key)
}

// Language returns the base language of the localizer, e.g. "de".
func (l *Localizer) Language() string {
	base, _ := l.tag.Base()
	return base.String()
}
