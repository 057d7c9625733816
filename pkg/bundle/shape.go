package bundle

import (
	"regexp"
	"strings"
)

// Shape says which family of source the document belongs to. Component code
// is always converted down to HTML so rendering has one execution path.
type Shape string

const (
	ShapeHTML      Shape = "html"
	ShapeComponent Shape = "component"
)

// componentMarkers are framework signatures that mark component-style code.
// One hit is enough; HTML documents never carry these.
var componentMarkers = []string{
	"import react",
	"from \"react\"",
	"from 'react'",
	"export default",
	"export function",
	"export const",
	"classname=",
	"usestate(",
	"useeffect(",
	"reactdom.render",
	"reactdom.createroot",
}

var returnMarkupRegex = regexp.MustCompile(`(?s)return\s*\(`)

// DetectShape classifies raw document source.
func DetectShape(source string) Shape {
	lower := strings.ToLower(source)

	for _, marker := range componentMarkers {
		if strings.Contains(lower, marker) {
			return ShapeComponent
		}
	}

	// A return statement handing back markup is component code even without
	// an import, e.g. a bare function component.
	if returnMarkupRegex.MatchString(source) && strings.Contains(source, "<") &&
		!strings.Contains(lower, "<!doctype") && !strings.Contains(lower, "<html") {
		if strings.Contains(lower, "function ") || strings.Contains(source, "=>") {
			return ShapeComponent
		}
	}

	return ShapeHTML
}

var (
	importLineRegex  = regexp.MustCompile(`(?m)^\s*import\s+[^\n]*$`)
	exportLineRegex  = regexp.MustCompile(`(?m)^\s*export\s+(default\s+)?`)
	jsxExprAttrRegex = regexp.MustCompile(`\s[a-zA-Z][\w-]*=\{[^{}]*(\{[^{}]*\}[^{}]*)*\}`)
	jsxStringRegex   = regexp.MustCompile(`\{\s*(?:"([^"]*)"|'([^']*)')\s*\}`)
	jsxCommentRegex  = regexp.MustCompile(`\{\s*/\*.*?\*/\s*\}`)
)

// ConvertComponent lowers component-style code to plain markup: the first
// returned JSX region with framework attribute spellings translated and
// expression attributes dropped. Conversion is best effort; code that hides
// its markup from these heuristics comes back as an empty string and the
// caller falls back to rendering the raw source as text.
func ConvertComponent(source string) string {
	markup := extractReturnedMarkup(source)
	if markup == "" {
		return ""
	}

	markup = jsxCommentRegex.ReplaceAllString(markup, "")
	// Event handlers and expression attributes have no meaning without the
	// framework runtime; they are dropped, not emulated.
	markup = jsxExprAttrRegex.ReplaceAllString(markup, "")
	markup = jsxStringRegex.ReplaceAllString(markup, "$1$2")
	markup = strings.ReplaceAll(markup, "className=", "class=")
	markup = strings.ReplaceAll(markup, "htmlFor=", "for=")
	markup = strings.ReplaceAll(markup, "<>", "<div>")
	markup = strings.ReplaceAll(markup, "</>", "</div>")

	return strings.TrimSpace(markup)
}

// extractReturnedMarkup pulls the first parenthesized return block, or a bare
// `return <...>;` statement, out of component code.
func extractReturnedMarkup(source string) string {
	if loc := returnMarkupRegex.FindStringIndex(source); loc != nil {
		depth := 0
		for i := loc[1] - 1; i < len(source); i++ {
			switch source[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					inner := source[loc[1]:i]
					if strings.Contains(inner, "<") {
						return inner
					}
					return ""
				}
			}
		}
		return "" // unbalanced: treat as unterminated, extract nothing
	}

	// Bare `return <div>...;` without parentheses.
	if i := strings.Index(source, "return <"); i >= 0 {
		rest := source[i+len("return "):]
		if end := strings.LastIndex(rest, ">"); end >= 0 {
			return rest[:end+1]
		}
	}
	return ""
}

// StripModuleSyntax removes import/export plumbing, for showing converted
// component code to the user next to the rendered result.
func StripModuleSyntax(source string) string {
	out := importLineRegex.ReplaceAllString(source, "")
	out = exportLineRegex.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
