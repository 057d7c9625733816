// Package merge applies approved mutations to the working document. Apply is
// deterministic and side-effect free: the caller owns the document snapshot
// and decides what to do with the result.
package merge

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alantheprice/pagewright/pkg/classify"
	"github.com/alantheprice/pagewright/pkg/dom"
	"github.com/alantheprice/pagewright/pkg/parser"
	"github.com/alantheprice/pagewright/pkg/utils"
)

// Managed override block markers. All AI-authored style rules accumulate in
// one block inside <head> so hand-authored CSS is never touched.
const (
	OverrideBlockOpen     = `<style id="pagewright-overrides">`
	OverrideBlockClose    = "</style>"
	overrideBlockSentinel = "/* pagewright overrides end */"
)

var (
	closingBodyRegex = regexp.MustCompile(`(?i)</body\s*>`)
	closingHeadRegex = regexp.MustCompile(`(?i)</head\s*>`)
	openingHeadRegex = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)
)

// Apply folds one approved mutation into the document and returns the next
// document snapshot. It never fails on a missing insertion point; structural
// placement degrades to append-at-end so the result always renders.
func Apply(doc string, m classify.PendingMutation) (string, error) {
	switch m.Kind {
	case classify.KindReplace:
		return m.ProposedContent, nil

	case classify.KindSnippet:
		return applySnippet(doc, m), nil

	case classify.KindElement:
		return applyElementPatch(doc, m)

	case classify.KindStyles:
		return applyStructuredEdits(doc, m)

	case classify.KindActions:
		// Builder actions are routed to the action backend; document text is
		// never touched.
		return doc, nil
	}

	return doc, fmt.Errorf("unknown mutation kind %q", m.Kind)
}

// applySnippet inserts the proposed fragment immediately before the closing
// body marker, bracketed by comments carrying the timestamp and originating
// action so the merge stays traceable in the source. No body marker means the
// fragment is appended at the end.
func applySnippet(doc string, m classify.PendingMutation) string {
	stamp := m.CreatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	action := string(m.OriginatingAction)
	if action == "" {
		action = string(classify.ActionNone)
	}

	block := fmt.Sprintf("<!-- pagewright:%s %s -->\n%s\n<!-- /pagewright:%s -->",
		action, stamp.Format(time.RFC3339), strings.TrimSpace(m.ProposedContent), action)

	if loc := closingBodyRegex.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + block + "\n" + doc[loc[0]:]
	}
	return appendAtEnd(doc, block)
}

// applyElementPatch swaps the targeted element for the proposed markup in a
// parsed DOM and serializes the document back. A selector that no longer
// resolves is an error the caller surfaces as "re-select and retry".
func applyElementPatch(doc string, m classify.PendingMutation) (string, error) {
	session, err := dom.NewSession(doc)
	if err != nil {
		return doc, err
	}
	if !session.ReplaceElement(m.TargetSelector, m.ProposedContent) {
		return doc, fmt.Errorf("selector %q no longer resolves in the document", m.TargetSelector)
	}
	out, err := session.HTML()
	if err != nil {
		return doc, err
	}
	return out, nil
}

// applyStructuredEdits synthesizes CSS for style and layout operations into
// the managed override block and stamps intent wirings onto the DOM.
func applyStructuredEdits(doc string, m classify.PendingMutation) (string, error) {
	var rules []string
	for _, s := range m.Styles {
		rules = append(rules, StyleRule(s))
	}
	for _, l := range m.Layouts {
		rules = append(rules, LayoutRules(l)...)
	}
	if len(rules) > 0 {
		doc = AppendOverrideRules(doc, rules)
	}

	if len(m.Wirings) > 0 {
		wired, err := applyIntentWirings(doc, m.Wirings)
		if err != nil {
			return doc, err
		}
		doc = wired
	}

	return doc, nil
}

// StyleRule renders one style modification as an override rule. Rules carry
// !important so they win over the template's own declarations.
func StyleRule(s parser.StyleMod) string {
	return fmt.Sprintf("%s { %s: %s !important; }", s.Selector, s.Property, s.Value)
}

// LayoutRules renders the rule set for one layout change.
func LayoutRules(l parser.LayoutChange) []string {
	var decls []string
	switch l.Type {
	case parser.LayoutGrid:
		decls = append(decls, "display: grid")
		columns := l.Columns
		if columns <= 0 {
			columns = 2
		}
		decls = append(decls, fmt.Sprintf("grid-template-columns: repeat(%d, 1fr)", columns))
	case parser.LayoutFlex:
		decls = append(decls, "display: flex", "flex-wrap: wrap")
	case parser.LayoutStack:
		decls = append(decls, "display: flex", "flex-direction: column")
	default:
		return nil
	}

	if l.Gap != "" {
		decls = append(decls, "gap: "+l.Gap)
	}
	if l.Align != "" {
		decls = append(decls, "align-items: "+l.Align)
	}
	if l.Justify != "" {
		decls = append(decls, "justify-content: "+l.Justify)
	}

	var b strings.Builder
	b.WriteString(l.Selector)
	b.WriteString(" { ")
	for _, d := range decls {
		b.WriteString(d)
		b.WriteString(" !important; ")
	}
	b.WriteString("}")
	return []string{b.String()}
}

// AppendOverrideRules adds rules to the managed override block, creating the
// block inside <head> on first use. Accumulation is append-only: the same rule
// arriving twice appears twice. Existing rules are never rewritten.
func AppendOverrideRules(doc string, rules []string) string {
	if len(rules) == 0 {
		return doc
	}
	body := strings.Join(rules, "\n")

	if i := strings.Index(doc, overrideBlockSentinel); i >= 0 {
		return doc[:i] + body + "\n" + doc[i:]
	}
	// Hand edits may have stripped the sentinel; the block opener still marks
	// the accumulation point.
	if i := strings.Index(doc, OverrideBlockOpen); i >= 0 {
		at := i + len(OverrideBlockOpen)
		return doc[:at] + "\n" + body + doc[at:]
	}

	block := fmt.Sprintf("%s\n%s\n%s\n%s", OverrideBlockOpen, body, overrideBlockSentinel, OverrideBlockClose)

	// Prefer the end of head; fall back to just after <head>, then before
	// </body>, then append.
	if loc := closingHeadRegex.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + block + "\n" + doc[loc[0]:]
	}
	if loc := openingHeadRegex.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "\n" + block + doc[loc[1]:]
	}
	if loc := closingBodyRegex.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + block + "\n" + doc[loc[0]:]
	}
	return appendAtEnd(doc, block)
}

// applyIntentWirings stamps data-intent attributes through a DOM pass.
// Selectors that match nothing are skipped; wiring is best effort and the
// document always comes back well formed.
func applyIntentWirings(doc string, wirings []parser.IntentWiring) (string, error) {
	session, err := dom.NewSession(doc)
	if err != nil {
		return doc, err
	}
	touched := false
	for _, w := range wirings {
		label := w.Label
		if label == "" {
			// The intent identifier stands in for a missing label,
			// humanized for the builder UI.
			label = utils.HumanizeIdentifier(w.Intent)
		}
		if session.WireIntent(w.Selector, w.Intent, label) {
			touched = true
		}
	}
	if !touched {
		return doc, nil
	}
	return session.HTML()
}

func appendAtEnd(doc, block string) string {
	if doc == "" {
		return block
	}
	return strings.TrimRight(doc, "\n") + "\n" + block
}
