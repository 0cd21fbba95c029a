// Package view renders the guestbook page and the swappable entry list.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"guestbook/pkg/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// ListID is the element id create and delete responses replace.
const ListID = "message-list"

// ListData feeds the entry list fragment.
type ListData struct {
	Locale  Locale
	Entries []domain.Entry
	// Error is shown above the entries when a submission was rejected.
	Error string
}

// FormData feeds the submission form.
type FormData struct {
	Locale     Locale
	MaxName    int
	MaxMessage int
	// OOB marks the form for an htmx out-of-band swap, which resets it.
	OOB bool
}

// PageData feeds the full page.
type PageData struct {
	Locale Locale
	Form   FormData
	List   ListData
}

// Renderer executes the embedded templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
	i18n *Localizer
}

// NewRenderer parses the templates once. defaultLang is used when the
// request's Accept-Language matches nothing supported.
func NewRenderer(defaultLang string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, i18n: NewLocalizer(defaultLang)}, nil
}

// Locale negotiates the UI language from an Accept-Language header value.
func (r *Renderer) Locale(acceptLanguage string) Locale {
	return r.i18n.Match(acceptLanguage)
}

// Page writes the whole document: form plus current entries.
func (r *Renderer) Page(w io.Writer, loc Locale, entries []domain.Entry) error {
	return r.tmpl.ExecuteTemplate(w, "page", PageData{
		Locale: loc,
		Form:   newForm(loc, false),
		List:   ListData{Locale: loc, Entries: entries},
	})
}

// List writes only the entry list fragment.
func (r *Renderer) List(w io.Writer, data ListData) error {
	return r.tmpl.ExecuteTemplate(w, "list", data)
}

// Submitted writes the list fragment followed by a blank out-of-band form so
// the client clears its inputs after a successful submission.
func (r *Renderer) Submitted(w io.Writer, loc Locale, entries []domain.Entry) error {
	if err := r.List(w, ListData{Locale: loc, Entries: entries}); err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "form", newForm(loc, true))
}

func newForm(loc Locale, oob bool) FormData {
	return FormData{
		Locale:     loc,
		MaxName:    domain.MaxNameChars,
		MaxMessage: domain.MaxMessageChars,
		OOB:        oob,
	}
}
