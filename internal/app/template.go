package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ciid-go/internal/ciid"
)

// DateTimeLayout renders ${date_time}: RFC 3339 with milliseconds and a
// numeric offset, never "Z".
const DateTimeLayout = "2006-01-02T15:04:05.000-07:00"

// templateVars maps each template variable to its value for an identity.
var templateVars = map[string]func(*ciid.Identity) string{
	"identifier":  func(id *ciid.Identity) string { return id.Identifier },
	"timestamp":   func(id *ciid.Identity) string { return strconv.FormatInt(id.CapturedAt.UnixMilli(), 10) },
	"date_time":   func(id *ciid.Identity) string { return id.CapturedAt.Format(DateTimeLayout) },
	"fingerprint": func(id *ciid.Identity) string { return id.FingerprintHex() },
	"path":        func(id *ciid.Identity) string { return id.Path },
	"extension":   func(id *ciid.Identity) string { return strings.TrimPrefix(filepath.Ext(id.Path), ".") },
}

// Template is a parsed --print template using ${name} or $name variables.
type Template struct {
	text string
}

// ParseTemplate checks that text only uses known variables.
func ParseTemplate(text string) (*Template, error) {
	var unknown []string
	os.Expand(text, func(name string) string {
		if _, ok := templateVars[name]; !ok {
			unknown = append(unknown, name)
		}
		return ""
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown template variables: %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(TemplateVariables(), ", "))
	}
	return &Template{text: text}, nil
}

// Render expands the template for id. No newline is appended.
func (t *Template) Render(id *ciid.Identity) string {
	return os.Expand(t.text, func(name string) string {
		return templateVars[name](id)
	})
}

// TemplateVariables lists the variable names a template may use.
func TemplateVariables() []string {
	names := make([]string, 0, len(templateVars))
	for name := range templateVars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
