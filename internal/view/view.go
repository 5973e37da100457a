// Package view renders the server-side HTML pages (home and login).
//
// Each page is parsed on top of templates/layout.html and executed through
// the layout, so pages only define the "title" and "content" blocks.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

// Page names accepted by Render.
const (
	PageHome  = "home"
	PageLogin = "login"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = mustParsePages(PageHome, PageLogin)

func mustParsePages(names ...string) map[string]*template.Template {
	layout := template.Must(
		template.New("layout.html").
			Funcs(sprig.FuncMap()).
			ParseFS(templateFS, "templates/layout.html"),
	)

	parsed := make(map[string]*template.Template, len(names))
	for _, name := range names {
		page := template.Must(layout.Clone())
		parsed[name] = template.Must(page.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return parsed
}

// Render executes page with data and returns the HTML document.
func Render(page string, data any) (string, error) {
	tmpl, ok := pages[page]
	if !ok {
		return "", fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return "", fmt.Errorf("failed to render page %s: %w", page, err)
	}
	return buf.String(), nil
}

// LoginPage is the data of the login form.
type LoginPage struct {
	// ErrorMessage is shown above the form when non-empty.
	ErrorMessage string
}

// HomePage is the data of the landing page.
type HomePage struct {
	Environment string
}
