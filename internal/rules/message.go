package rules

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// FormatMessage substitutes {{ name }} placeholders in template with data.
// Placeholders without a value are left as written.
func FormatMessage(template string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(template, "{{") {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := data[name]; ok {
			return v
		}
		return m
	})
}

// Placeholders returns the names referenced by template, in order.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

func checkTemplate(template string) error {
	if strings.TrimSpace(template) == "" {
		return fmt.Errorf("empty message template")
	}
	rest := placeholderPattern.ReplaceAllString(template, "")
	if strings.Contains(rest, "{{") || strings.Contains(rest, "}}") {
		return fmt.Errorf("malformed placeholder in %q", template)
	}
	return nil
}
