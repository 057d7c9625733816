// Package classify turns parsed assistant output into staged proposals,
// deciding between full replacement, snippet merge, and single-element patch.
package classify

import (
	"strings"
	"time"

	"github.com/alantheprice/pagewright/pkg/dom"
	"github.com/alantheprice/pagewright/pkg/parser"
)

// Classify decides how parsed assistant output should mutate the document.
// The first returned entry, when present, is the staged document mutation;
// builder actions always come as their own confirmation-only entry since they
// are routed to the action backend, never merged into document text.
//
// Priority when several extraction families co-occur:
// file patches > style/layout/intent edits > builder actions > code blocks.
// Code blocks are only consulted when no structured content was found.
func Classify(parsed *parser.ParsedResponse, doc string, action TemplateAction, selected *dom.SelectedElement) []PendingMutation {
	var mutations []PendingMutation
	now := time.Now()

	switch {
	case len(parsed.Files) > 0:
		content := primaryFile(parsed.Files).Content
		if m := classifyContent(content, doc, action, selected, now); m != nil {
			mutations = append(mutations, *m)
		}

	case len(parsed.StyleMods) > 0 || len(parsed.LayoutChanges) > 0 || len(parsed.IntentWirings) > 0:
		mutations = append(mutations, PendingMutation{
			Kind:              KindStyles,
			OriginatingAction: action,
			Styles:            parsed.StyleMods,
			Layouts:           parsed.LayoutChanges,
			Wirings:           parsed.IntentWirings,
			CreatedAt:         now,
		})

	case !parsed.HasStructuredContent:
		if block := primaryBlock(parsed.CodeBlocks); block != nil {
			if m := classifyContent(block.Content, doc, action, selected, now); m != nil {
				mutations = append(mutations, *m)
			}
		}
	}

	if len(parsed.BuilderActions) > 0 {
		mutations = append(mutations, PendingMutation{
			Kind:              KindActions,
			OriginatingAction: action,
			Actions:           parsed.BuilderActions,
			CreatedAt:         now,
		})
	}

	return mutations
}

// classifyContent applies the replace/snippet/element decision tree to one
// piece of proposed document content.
func classifyContent(content, doc string, action TemplateAction, selected *dom.SelectedElement, now time.Time) *PendingMutation {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	fullDoc := dom.IsFullDocument(content)

	// An active selection plus fragment output targets that element only.
	if selected != nil && selected.Selector != "" && !fullDoc {
		return &PendingMutation{
			Kind:              KindElement,
			ProposedContent:   content,
			TargetSelector:    selected.Selector,
			IsSnippet:         true,
			OriginatingAction: action,
			CreatedAt:         now,
		}
	}

	// A surgical request answered with a fragment merges into the existing
	// document, never replaces it.
	if action.IsSurgical() && !fullDoc && doc != "" {
		return &PendingMutation{
			Kind:              KindSnippet,
			ProposedContent:   content,
			IsSnippet:         true,
			OriginatingAction: action,
			CreatedAt:         now,
		}
	}

	m := &PendingMutation{
		Kind:              KindReplace,
		ProposedContent:   content,
		OriginatingAction: action,
		CreatedAt:         now,
	}

	// A full-document answer to a surgical request is staged, not rejected;
	// the approval surface warns before commit.
	if action.IsSurgical() && fullDoc && doc != "" {
		m.Warnings = append(m.Warnings,
			"the response replaces the whole page even though a "+string(action)+" change was requested")
	}
	if !fullDoc && doc != "" {
		m.Warnings = append(m.Warnings,
			"the proposed replacement is a fragment, not a complete page")
	}

	return m
}

// primaryFile picks the patch that becomes the document proposal: the first
// HTML file when one exists, otherwise the first patch.
func primaryFile(files []parser.FilePatch) parser.FilePatch {
	for _, f := range files {
		path := strings.ToLower(f.Path)
		if strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm") {
			return f
		}
	}
	return files[0]
}

// primaryBlock returns the first non-empty code block.
func primaryBlock(blocks []parser.CodeBlock) *parser.CodeBlock {
	for i := range blocks {
		if strings.TrimSpace(blocks[i].Content) != "" {
			return &blocks[i]
		}
	}
	return nil
}
