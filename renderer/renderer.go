package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

// templates is the flat view of the embedded markdown templates.
var templates, _ = fs.Sub(templatesFS, "templates")

// RenderMonth renders the planning view of a month to markdown.
func RenderMonth(m *Month) string {
	partials := map[string]string{
		"month_title":    "month_title.md",
		"month_accounts": "month_accounts.md",
		"month_buckets":  "month_buckets.md",
	}
	if len(m.RefErrors) > 0 {
		partials["month_ref_errors"] = "month_ref_errors.md"
	} else {
		partials["month_ref_errors"] = ""
	}
	return renderTemplate("month", "month.md", partials, m)
}

// RenderBalances renders balance checks to markdown.
func RenderBalances(b *Balances) string {
	return renderTemplate("balances", "balances.md", nil, b)
}

// RenderRefErrorScan renders a remediation scan to markdown.
func RenderRefErrorScan(s *RefErrorScan) string {
	return renderTemplate("refErrorScan", "ref_error_scan.md", nil, s)
}

// RenderFixResult renders the outcome of applied fixes to markdown.
func RenderFixResult(r *FixResult) string {
	return renderTemplate("fixResult", "fix_result.md", nil, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
