package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/pagewright/pkg/dom"
	"github.com/alantheprice/pagewright/pkg/parser"
)

const existingDoc = `<!DOCTYPE html><html><head></head><body><h1>Old</h1></body></html>`

const fullDocBlock = `<!DOCTYPE html>
<html><head><title>New</title></head><body><h1>New</h1></body></html>`

func TestFullDocumentDuringSurgicalActionIsStagedWithWarning(t *testing.T) {
	parsed := parser.Parse("Here you go:\n```html\n" + fullDocBlock + "\n```")

	mutations := Classify(parsed, existingDoc, ActionModify, nil)
	require.Len(t, mutations, 1)

	m := mutations[0]
	assert.Equal(t, KindReplace, m.Kind)
	assert.False(t, m.IsSnippet)
	assert.NotEmpty(t, m.Warnings, "full replacement for a surgical action must be flagged")
	assert.Equal(t, ActionModify, m.OriginatingAction)
}

func TestFragmentWithSelectionTargetsElement(t *testing.T) {
	parsed := parser.Parse("```html\n<h1>Better headline</h1>\n```")
	selected := &dom.SelectedElement{Selector: "h1", TagName: "h1"}

	mutations := Classify(parsed, existingDoc, ActionModify, selected)
	require.Len(t, mutations, 1)

	m := mutations[0]
	assert.Equal(t, KindElement, m.Kind)
	assert.Equal(t, "h1", m.TargetSelector)
	assert.True(t, m.IsSnippet)
}

func TestFragmentWithSurgicalActionBecomesSnippet(t *testing.T) {
	parsed := parser.Parse("```html\n<section class=\"faq\">...</section>\n```")

	mutations := Classify(parsed, existingDoc, ActionAdd, nil)
	require.Len(t, mutations, 1)

	m := mutations[0]
	assert.Equal(t, KindSnippet, m.Kind)
	assert.True(t, m.IsSnippet)
	assert.Empty(t, m.TargetSelector)
}

func TestFullControlReplacesWithoutWarning(t *testing.T) {
	parsed := parser.Parse("```html\n" + fullDocBlock + "\n```")

	mutations := Classify(parsed, existingDoc, ActionFullControl, nil)
	require.Len(t, mutations, 1)
	assert.Equal(t, KindReplace, mutations[0].Kind)
	assert.Empty(t, mutations[0].Warnings)
}

func TestNoExistingDocumentAlwaysReplaces(t *testing.T) {
	parsed := parser.Parse("```html\n<div><h1>Welcome</h1></div>\n```")

	mutations := Classify(parsed, "", ActionNone, nil)
	require.Len(t, mutations, 1)
	assert.Equal(t, KindReplace, mutations[0].Kind)
	assert.Empty(t, mutations[0].Warnings)
}

func TestFragmentReplacementOfExistingDocumentIsFlagged(t *testing.T) {
	parsed := parser.Parse("```html\n<div>just a fragment</div>\n```")

	mutations := Classify(parsed, existingDoc, ActionNone, nil)
	require.Len(t, mutations, 1)
	assert.Equal(t, KindReplace, mutations[0].Kind)
	assert.NotEmpty(t, mutations[0].Warnings)
}

func TestFilePatchesTakePriorityOverCodeBlocks(t *testing.T) {
	raw := `<file path="index.html">` + fullDocBlock + "</file>\n```html\n<div>ignored block</div>\n```"
	parsed := parser.Parse(raw)

	mutations := Classify(parsed, "", ActionFullControl, nil)
	require.Len(t, mutations, 1)
	assert.Contains(t, mutations[0].ProposedContent, "<title>New</title>")
	assert.NotContains(t, mutations[0].ProposedContent, "ignored block")
}

func TestPrimaryFilePrefersHTML(t *testing.T) {
	files := []parser.FilePatch{
		{Path: "styles.css", Content: "body{}"},
		{Path: "index.html", Content: fullDocBlock},
	}
	assert.Equal(t, "index.html", primaryFile(files).Path)

	cssOnly := []parser.FilePatch{{Path: "styles.css", Content: "body{}"}}
	assert.Equal(t, "styles.css", primaryFile(cssOnly).Path)
}

func TestStyleModsBecomeStylesMutation(t *testing.T) {
	parsed := parser.Parse(`<style selector=".cta" property="color" value="red"/>`)

	mutations := Classify(parsed, existingDoc, ActionRestyle, nil)
	require.Len(t, mutations, 1)

	m := mutations[0]
	assert.Equal(t, KindStyles, m.Kind)
	require.Len(t, m.Styles, 1)
	assert.Equal(t, ".cta", m.Styles[0].Selector)
}

func TestStructuredContentSuppressesCodeBlockHeuristics(t *testing.T) {
	raw := `<style selector=".cta" property="color" value="red"/>` +
		"\n```html\n<div>example markup, not a proposal</div>\n```"
	parsed := parser.Parse(raw)

	mutations := Classify(parsed, existingDoc, ActionRestyle, nil)
	require.Len(t, mutations, 1)
	assert.Equal(t, KindStyles, mutations[0].Kind)
}

func TestBuilderActionsAreConfirmationOnly(t *testing.T) {
	parsed := parser.Parse(`<action type="install_pack" pack="contact-form"/>`)

	mutations := Classify(parsed, existingDoc, ActionAdd, nil)
	require.Len(t, mutations, 1)

	m := mutations[0]
	assert.Equal(t, KindActions, m.Kind)
	assert.Empty(t, m.ProposedContent, "builder actions never carry document text")
	require.Len(t, m.Actions, 1)
	assert.Equal(t, parser.ActionInstallPack, m.Actions[0].Type)
}

func TestBuilderActionsRideAlongWithDocumentMutation(t *testing.T) {
	raw := `<file path="index.html">` + fullDocBlock + `</file>
<action type="wire_button" selector="#cta" intent="signup"/>`
	parsed := parser.Parse(raw)

	mutations := Classify(parsed, existingDoc, ActionFullControl, nil)
	require.Len(t, mutations, 2)
	assert.Equal(t, KindReplace, mutations[0].Kind)
	assert.Equal(t, KindActions, mutations[1].Kind)
}

func TestProseOnlyResponseYieldsNoMutation(t *testing.T) {
	parsed := parser.Parse("Sounds good! Your site already has a contact form.")
	assert.Empty(t, Classify(parsed, existingDoc, ActionSuggest, nil))
}

func TestEmptyCodeBlockYieldsNoMutation(t *testing.T) {
	parsed := parser.Parse("```html\n\n```")
	assert.Empty(t, Classify(parsed, existingDoc, ActionModify, nil))
}
