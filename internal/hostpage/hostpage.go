// Package hostpage renders the HTML page that loads a wasm-bindgen bundle in the browser.
//
// Templates carry two markers that are replaced literally, without a template
// engine: {{name}} for the target name and {{css}} for caller supplied
// stylesheet text.
package hostpage

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

const (
	NameMarker = "{{name}}"
	CSSMarker  = "{{css}}"

	// FileName is the name of the rendered page inside the bundle directory.
	FileName = "index.html"
)

//go:embed index.template.html
var defaultTemplate string

// DefaultTemplate returns the built-in page template.
func DefaultTemplate() string {
	return defaultTemplate
}

// Page is a validated template plus stylesheet text.
type Page struct {
	template string
	css      string
}

// New validates tmpl and css. An empty tmpl selects the default template.
func New(tmpl, css string) (*Page, error) {
	// Trivially bypassed with extra whitespace; it guards against accidents, not attackers.
	if strings.Contains(css, "</style>") {
		return nil, errors.TemplateError("`</style>` detected in the css; this is disallowed to prevent injecting elements into the page").Build()
	}
	if tmpl == "" {
		tmpl = defaultTemplate
	}
	if !strings.Contains(tmpl, NameMarker) {
		return nil, errors.TemplateError("page template has no " + NameMarker + " marker").Build()
	}
	if css != "" && !strings.Contains(tmpl, CSSMarker) {
		return nil, errors.TemplateError("css was supplied but the page template has no " + CSSMarker + " marker").Build()
	}
	return &Page{template: tmpl, css: css}, nil
}

// NewFromFile reads a custom template from path and validates it like New.
func NewFromFile(path, css string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTemplate, "cannot read page template").
			WithContext("path", path).
			Build()
	}
	return New(string(data), css)
}

// Render substitutes the target name and then the stylesheet text. The name is
// replaced first: target names cannot contain '{', so they never introduce a
// {{css}} marker.
func (p *Page) Render(name string) []byte {
	out := strings.ReplaceAll(p.template, NameMarker, name)
	out = strings.ReplaceAll(out, CSSMarker, p.css)
	return []byte(out)
}

// WriteFile renders the page for name into dir/index.html and returns the file path.
func (p *Page) WriteFile(dir, name string) (string, error) {
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, p.Render(name), 0o644); err != nil {
		return "", errors.FileSystemError("failed to write host page").WithCause(err).
			WithContext("path", path).
			Build()
	}
	return path, nil
}
