// Package export renders an onboarding form as the fixed-layout meeting document.
package export

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/schema"
)

// Placeholder is rendered for every empty or absent field.
const Placeholder = "___________"

// AccessEmail is the agency address every platform access is granted to.
const AccessEmail = "media@skardigital.no"

// TimestampLayout formats the "Generert" line (dd.mm.yyyy, hh:mm:ss).
const TimestampLayout = "02.01.2006, 15:04:05"

const ruler = "═══════════════════════════════════════════════"

//go:embed templates/*.tmpl
var templatesFS embed.FS

var textFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"rule":  func() string { return ruler },
}

var textTmpl = template.Must(
	template.New("meeting.txt.tmpl").Funcs(textFuncs).ParseFS(templatesFS, "templates/meeting.txt.tmpl"),
)

var printTmpl = htmltemplate.Must(
	htmltemplate.New("print.html.tmpl").ParseFS(templatesFS, "templates/print.html.tmpl"),
)

type document struct {
	ClientName  string
	AccessEmail string
	Generated   string
	Sections    []schema.Section
	data        model.FormData
}

// V returns the value of key or the placeholder when it is empty.
func (d document) V(key string) string {
	if v := d.data[key]; v != "" {
		return v
	}
	return Placeholder
}

// Empty reports whether key has no value.
func (d document) Empty(key string) bool { return d.data[key] == "" }

func newDocument(data model.FormData, clientName string, generatedAt time.Time) document {
	return document{
		ClientName:  clientName,
		AccessEmail: AccessEmail,
		Generated:   generatedAt.Format(TimestampLayout),
		Sections:    schema.Sections,
		data:        data,
	}
}

// Format renders the plain-text meeting document. The output depends only on its arguments.
func Format(data model.FormData, clientName string, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, newDocument(data, clientName, generatedAt)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PrintHTML writes a printable HTML page of the form, one definition list per section.
func PrintHTML(w io.Writer, data model.FormData, clientName string, generatedAt time.Time) error {
	return printTmpl.Execute(w, newDocument(data, clientName, generatedAt))
}
