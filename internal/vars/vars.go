// Package vars implements ${NAME} placeholder substitution for step command
// templates.
//
// The default policy is deliberately permissive: placeholders with no binding
// are left verbatim in the output. Existing templates rely on passing
// unresolved placeholders through to the executing shell untouched.
// ExpandStrict is the opt-in mode that rejects unresolved placeholders.
package vars

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRegex matches ${NAME} where NAME is an identifier-like token.
var placeholderRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces every ${NAME} occurrence in s with bindings[NAME].
// Placeholders without a binding are left verbatim.
func Expand(s string, bindings map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := bindings[name]; ok {
			return value
		}
		return match
	})
}

// ExpandStrict behaves like Expand but returns an error naming every
// placeholder that has no binding. The partially expanded string is still
// returned for diagnostics.
func ExpandStrict(s string, bindings map[string]string) (string, error) {
	var unresolved []string
	out := placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := bindings[name]; ok {
			return value
		}
		unresolved = append(unresolved, name)
		return match
	})
	if len(unresolved) > 0 {
		return out, fmt.Errorf("unresolved placeholders: %s", strings.Join(unresolved, ", "))
	}
	return out, nil
}

// Names returns the placeholder names referenced by s, in order of first
// appearance.
func Names(s string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range placeholderRegex.FindAllStringSubmatch(s, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}
