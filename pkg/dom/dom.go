// Package dom gives the pipeline a real DOM to work against: selector
// resolution, element descriptors, and in-place updates over a parsed
// document, so structural edits never fall back to string splicing.
package dom

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// SelectedElement is the structural descriptor for one document node. It is
// captured when the user clicks a node in the rendered preview and becomes
// the implicit target of the next chat turn.
type SelectedElement struct {
	Selector    string            `json:"selector"`
	TagName     string            `json:"tagName"`
	TextContent string            `json:"textContent"`
	Attributes  map[string]string `json:"attributes"`
	Styles      map[string]string `json:"styles"`
}

// Updates describes an in-place mutation of one element. Nil/empty fields are
// left untouched.
type Updates struct {
	TextContent *string           `json:"textContent,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Styles      map[string]string `json:"styles,omitempty"`
}

// Text is a convenience for building an Updates that only replaces text.
func Text(s string) Updates {
	return Updates{TextContent: &s}
}

// ValidSelector reports whether s parses as a CSS selector. Selectors arrive
// from the sandboxed preview frame, so they are validated before use.
func ValidSelector(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := cascadia.Parse(s)
	return err == nil
}

// Session wraps one parsed document and answers selector-addressed reads and
// writes against it. Fragments round-trip as fragments: serialization gives
// back only the body content when the input had no document root.
type Session struct {
	doc      *goquery.Document
	fragment bool
}

// NewSession parses a document (or fragment) into a live DOM.
func NewSession(document string) (*Session, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Session{
		doc:      doc,
		fragment: !IsFullDocument(document),
	}, nil
}

// IsFullDocument reports whether source carries its own document root
// (doctype or <html>), as opposed to being a fragment.
func IsFullDocument(source string) bool {
	head := strings.ToLower(source)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<!doctype") || strings.Contains(head, "<html")
}

// Resolve reports whether the selector matches at least one element.
func (s *Session) Resolve(selector string) bool {
	if !ValidSelector(selector) {
		return false
	}
	return s.doc.Find(selector).Length() > 0
}

// Describe captures the structural descriptor of the first element matching
// the selector. The second return is false when nothing matches.
func (s *Session) Describe(selector string) (*SelectedElement, bool) {
	if !ValidSelector(selector) {
		return nil, false
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}

	attrs := make(map[string]string)
	for _, a := range sel.Nodes[0].Attr {
		attrs[a.Key] = a.Val
	}

	text := strings.TrimSpace(sel.Text())
	if len(text) > 300 {
		text = text[:300]
	}

	return &SelectedElement{
		Selector:    selector,
		TagName:     goquery.NodeName(sel),
		TextContent: text,
		Attributes:  attrs,
		Styles:      parseStyleAttr(attrs["style"]),
	}, true
}

// UpdateElement mutates the first element matching the selector in place.
// It returns false when the selector no longer resolves; callers must treat
// that as "re-select and retry", never as success.
func (s *Session) UpdateElement(selector string, u Updates) bool {
	if !ValidSelector(selector) {
		return false
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return false
	}

	if u.TextContent != nil {
		sel.SetText(*u.TextContent)
	}
	for k, v := range u.Attributes {
		if k == "style" {
			// Style attribute changes go through the Styles map so existing
			// declarations survive.
			continue
		}
		sel.SetAttr(k, v)
	}
	if len(u.Styles) > 0 {
		existing, _ := sel.Attr("style")
		sel.SetAttr("style", mergeStyleAttr(existing, u.Styles))
	}
	return true
}

// ReplaceElement swaps the first element matching the selector for new
// markup. Returns false when the selector no longer resolves.
func (s *Session) ReplaceElement(selector, markup string) bool {
	if !ValidSelector(selector) {
		return false
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return false
	}
	sel.ReplaceWithHtml(markup)
	return true
}

// WireIntent stamps data-intent attributes onto every element matching the
// selector. Returns false when nothing matches.
func (s *Session) WireIntent(selector, intent, label string) bool {
	if !ValidSelector(selector) {
		return false
	}
	sel := s.doc.Find(selector)
	if sel.Length() == 0 {
		return false
	}
	sel.SetAttr("data-intent", intent)
	if label != "" {
		sel.SetAttr("data-intent-label", label)
	}
	return true
}

// RemoveElement deletes every element matching the selector. Returns false
// when nothing matches.
func (s *Session) RemoveElement(selector string) bool {
	if !ValidSelector(selector) {
		return false
	}
	sel := s.doc.Find(selector)
	if sel.Length() == 0 {
		return false
	}
	sel.Remove()
	return true
}

// HTML serializes the session's document back to text. Fragments come back
// as fragments (body content only); full documents keep their root and
// doctype.
func (s *Session) HTML() (string, error) {
	if s.fragment {
		body := s.doc.Find("body")
		if body.Length() == 0 {
			return "", fmt.Errorf("fragment session has no body node")
		}
		var buf bytes.Buffer
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", fmt.Errorf("failed to render fragment: %w", err)
			}
		}
		return buf.String(), nil
	}

	out, err := s.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return out, nil
}

// parseStyleAttr splits an inline style attribute into a property map.
func parseStyleAttr(style string) map[string]string {
	styles := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		prop, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		prop = strings.TrimSpace(prop)
		value = strings.TrimSpace(value)
		if prop != "" && value != "" {
			styles[strings.ToLower(prop)] = value
		}
	}
	return styles
}

// mergeStyleAttr overlays new declarations onto an existing style attribute,
// keeping the order of surviving declarations stable.
func mergeStyleAttr(existing string, updates map[string]string) string {
	var order []string
	values := make(map[string]string)

	for _, decl := range strings.Split(existing, ";") {
		prop, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		if _, seen := values[prop]; !seen {
			order = append(order, prop)
		}
		values[prop] = value
	}

	var added []string
	for prop, value := range updates {
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		if _, seen := values[prop]; !seen {
			added = append(added, prop)
		}
		values[prop] = value
	}
	// New properties appended in sorted order so output is deterministic.
	sort.Strings(added)
	order = append(order, added...)

	var b strings.Builder
	for i, prop := range order {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(prop)
		b.WriteString(": ")
		b.WriteString(values[prop])
	}
	return b.String()
}
