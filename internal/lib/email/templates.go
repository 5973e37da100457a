package email

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

// Template is a string-based enum naming email templates.
type Template string

const (
	// TemplateConfirmation corresponds to templates/confirmation.{html,txt}
	TemplateConfirmation Template = "confirmation"

	// TemplateWelcome corresponds to templates/welcome.{html,txt}
	TemplateWelcome Template = "welcome"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// templateSet holds the html and plain text variants of every template.
type templateSet struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func loadTemplates() (*templateSet, error) {
	html, err := htmltemplate.New("").
		Funcs(sprig.FuncMap()).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html email templates")
	}

	text, err := texttemplate.New("").
		Funcs(sprig.TxtFuncMap()).
		ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse text email templates")
	}

	return &templateSet{html: html, text: text}, nil
}

func (s *templateSet) render(name Template, data map[string]string) (string, string, error) {
	var html bytes.Buffer
	if err := s.html.ExecuteTemplate(&html, string(name)+".html", data); err != nil {
		return "", "", errors.Wrapf(err, "failed to execute email template %s", name)
	}

	var text bytes.Buffer
	if err := s.text.ExecuteTemplate(&text, string(name)+".txt", data); err != nil {
		return "", "", errors.Wrapf(err, "failed to execute email template %s", name)
	}

	return html.String(), text.String(), nil
}
