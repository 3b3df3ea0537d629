package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

const Welcome = "welcome"

// EmailData holds the fields the templates read.
type EmailData struct {
	Name     string
	Username string
	Email    string
	AppName  string
	Time     string
}

// Rendered is one e-mail ready to hand to a mailer.Sender.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// defaultFn backs {{ .Value | default "Fallback" }}.
func defaultFn(fallback, value any) any {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	if value == nil || reflect.ValueOf(value).IsZero() {
		return fallback
	}
	return value
}

var funcs = map[string]any{"default": defaultFn}

// parsed holds every embedded template, parsed on first use. Subjects and
// plain text go through text/template, bodies through html/template.
var parsed = sync.OnceValues(func() (*texttpl.Template, error) {
	return texttpl.New("").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
})

var parsedHTML = sync.OnceValues(func() (*htmpl.Template, error) {
	return htmpl.New("").Funcs(funcs).ParseFS(FS, "*.html.tmpl")
})

func execute(name string, exec func(*bytes.Buffer) error) (string, error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Render executes <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl
// with data.
func Render(name string, data EmailData) (Rendered, error) {
	text, err := parsed()
	if err != nil {
		return Rendered{}, fmt.Errorf("parse text templates: %w", err)
	}
	html, err := parsedHTML()
	if err != nil {
		return Rendered{}, fmt.Errorf("parse html templates: %w", err)
	}

	var out Rendered
	if out.Subject, err = execute(name+".subject.tmpl", func(b *bytes.Buffer) error {
		return text.ExecuteTemplate(b, name+".subject.tmpl", data)
	}); err != nil {
		return Rendered{}, err
	}
	if out.Text, err = execute(name+".text.tmpl", func(b *bytes.Buffer) error {
		return text.ExecuteTemplate(b, name+".text.tmpl", data)
	}); err != nil {
		return Rendered{}, err
	}
	if out.HTML, err = execute(name+".html.tmpl", func(b *bytes.Buffer) error {
		return html.ExecuteTemplate(b, name+".html.tmpl", data)
	}); err != nil {
		return Rendered{}, err
	}
	out.Subject = strings.TrimSpace(out.Subject)
	return out, nil
}
