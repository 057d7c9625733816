// Package bundle turns a working document of any shape (full HTML, fragment,
// or component-style code) into one self-contained executable artifact for the
// sandboxed preview frame.
package bundle

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// baseShellCSS is the typography and reset applied when a fragment is wrapped
// in a synthesized shell.
const baseShellCSS = `*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, -apple-system, "Segoe UI", sans-serif; line-height: 1.5; color: #1e293b; background: #ffffff; }
img, video { max-width: 100%; height: auto; }
a { color: inherit; }`

// Options shape one bundling pass.
type Options struct {
	// Mode is the interaction mode baked into the instrumentation script:
	// ModeEdit (default) or ModeInteractive.
	Mode string

	// ExtraCSS is generated CSS concatenated after the hoisted style blocks.
	ExtraCSS string

	// ScriptPayload is a separate script appended before the closing body tag.
	ScriptPayload string

	// Title is used when a synthesized shell needs one.
	Title string

	// Bare skips the instrumentation script, for exporting a plain document.
	Bare bool
}

// Artifact is one executable document ready for the sandboxed frame.
type Artifact struct {
	HTML  string
	Mode  string
	Shape Shape
}

// Build bundles a document into an executable artifact. Component-shaped
// input is lowered to HTML first; fragments get a full synthesized shell with
// default typography, a base reset and a visible error overlay; style blocks
// are hoisted into one head-level block with nothing dropped.
func Build(document string, opts Options) (*Artifact, error) {
	mode := opts.Mode
	if mode != ModeInteractive {
		mode = ModeEdit
	}

	source := strings.TrimSpace(document)
	shape := DetectShape(source)

	markup := source
	if shape == ShapeComponent {
		markup = ConvertComponent(source)
		if markup == "" {
			// Conversion found no markup: show the source as visible text
			// instead of rendering nothing.
			markup = "<pre>" + escapeText(StripModuleSyntax(source)) + "</pre>"
		}
	}

	fragment := isFragment(markup)

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document for bundling: %w", err)
	}

	// Hoist every style block, in document order, into one head-level block.
	var cssParts []string
	if fragment {
		cssParts = append(cssParts, baseShellCSS)
	}
	gq.Find("style").Each(func(_ int, sel *goquery.Selection) {
		if css := strings.TrimSpace(sel.Text()); css != "" {
			cssParts = append(cssParts, css)
		}
		sel.Remove()
	})
	if extra := strings.TrimSpace(opts.ExtraCSS); extra != "" {
		cssParts = append(cssParts, extra)
	}

	head := gq.Find("head")
	if fragment {
		if head.Find("meta[charset]").Length() == 0 {
			head.PrependHtml(`<meta charset="utf-8">`)
		}
		if head.Find("title").Length() == 0 {
			title := opts.Title
			if title == "" {
				title = "Preview"
			}
			head.AppendHtml("<title>" + escapeText(title) + "</title>")
		}
	}
	if len(cssParts) > 0 {
		head.AppendHtml("<style data-pagewright=\"styles\">\n" + strings.Join(cssParts, "\n") + "\n</style>")
	}

	body := gq.Find("body")
	if fragment {
		body.AppendHtml(scriptTag(errorOverlayScript, "errors"))
	}
	if payload := strings.TrimSpace(opts.ScriptPayload); payload != "" {
		body.AppendHtml(scriptTag(payload, "payload"))
	}
	if !opts.Bare {
		instr := strings.Replace(instrumentationScript, "__MODE__", mode, 1)
		body.AppendHtml(scriptTag(instr, "instrument"))
	}

	out, err := gq.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize bundled document: %w", err)
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(out)), "<!doctype") {
		out = "<!DOCTYPE html>\n" + out
	}

	return &Artifact{HTML: out, Mode: mode, Shape: shape}, nil
}

// isFragment reports whether markup lacks all root document structure
// (doctype, html and body), meaning a shell must be synthesized around it.
func isFragment(markup string) bool {
	head := strings.ToLower(markup)
	if len(head) > 1024 {
		head = head[:1024]
	}
	return !strings.Contains(head, "<!doctype") &&
		!strings.Contains(head, "<html") &&
		!strings.Contains(head, "<body")
}

// scriptTag wraps script source in a tag, defusing any closing tag inside the
// payload so the document cannot be broken out of.
func scriptTag(source, name string) string {
	safe := strings.ReplaceAll(source, "</script", "<\\/script")
	return "<script data-pagewright=\"" + name + "\">\n" + safe + "\n</script>"
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
