package parser

import (
	"strings"
	"testing"
)

func TestParseNeverPanicsAndYieldsEmptyLists(t *testing.T) {
	inputs := []string{
		"",
		"plain prose with no markup at all",
		"<file path=\"index.html\">unterminated",
		"<style selector=\".x\"/>",     // missing property and value
		"<layout selector=\".x\"/>",    // missing type
		"<intent on=\"#btn\"/>",        // missing action
		"<action type=\"explode\"/>",   // unknown action type
		"``` \nunterminated fence",
		"<file>no path attr</file>",
		strings.Repeat("<<<>>>```", 500),
	}

	for _, in := range inputs {
		parsed := Parse(in)
		if parsed == nil {
			t.Fatalf("Parse(%q) returned nil", in)
		}
		if len(parsed.Files) != 0 || len(parsed.StyleMods) != 0 ||
			len(parsed.LayoutChanges) != 0 || len(parsed.IntentWirings) != 0 ||
			len(parsed.BuilderActions) != 0 {
			t.Errorf("Parse(%q) extracted operations from malformed input: %+v", in, parsed)
		}
		if parsed.HasStructuredContent {
			t.Errorf("Parse(%q) reported structured content", in)
		}
	}
}

func TestParseFilePatches(t *testing.T) {
	raw := `Here are your files.
<file path="index.html">
<!DOCTYPE html>
<html><body>one</body></html>
</file>
Some prose between.
<file path="styles.css">body { margin: 0; }</file>
<file path="index.html"><html><body>two</body></html></file>`

	parsed := Parse(raw)
	if len(parsed.Files) != 2 {
		t.Fatalf("expected 2 file patches, got %d", len(parsed.Files))
	}
	if parsed.Files[0].Path != "index.html" {
		t.Errorf("first patch path = %q", parsed.Files[0].Path)
	}
	// Last write for a duplicated path wins.
	if !strings.Contains(parsed.Files[0].Content, "two") {
		t.Errorf("duplicate path did not take the last content: %q", parsed.Files[0].Content)
	}
	if parsed.Files[1].Path != "styles.css" || parsed.Files[1].Content != "body { margin: 0; }" {
		t.Errorf("second patch = %+v", parsed.Files[1])
	}
	if !parsed.HasStructuredContent {
		t.Error("file patches should set HasStructuredContent")
	}
}

func TestParseCodeBlocks(t *testing.T) {
	raw := "Here's the page:\n```html\n<!DOCTYPE html>\n<html></html>\n```\nand a script:\n```js\nconsole.log(1)\n```\n"

	parsed := Parse(raw)
	if len(parsed.CodeBlocks) != 2 {
		t.Fatalf("expected 2 code blocks, got %d", len(parsed.CodeBlocks))
	}
	if parsed.CodeBlocks[0].Language != "html" {
		t.Errorf("first block language = %q", parsed.CodeBlocks[0].Language)
	}
	if !strings.HasPrefix(parsed.CodeBlocks[0].Content, "<!DOCTYPE html>") {
		t.Errorf("first block content = %q", parsed.CodeBlocks[0].Content)
	}
	if parsed.CodeBlocks[1].Language != "javascript" {
		t.Errorf("js hint not normalized: %q", parsed.CodeBlocks[1].Language)
	}
	if parsed.HasStructuredContent {
		t.Error("code blocks alone must not set HasStructuredContent")
	}
}

func TestParseDiscardsUnterminatedFence(t *testing.T) {
	raw := "```html\n<div>partial"
	parsed := Parse(raw)
	if len(parsed.CodeBlocks) != 0 {
		t.Errorf("unterminated fence should be ignored, got %+v", parsed.CodeBlocks)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"typescript", "javascript"},
		{"ts", "javascript"},
		{"tsx", "javascript"},
		{"jsx", "javascript"},
		{"JS", "javascript"},
		{"htm", "html"},
		{"HTML", "html"},
		{"css", "css"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLanguage(tt.hint); got != tt.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tt.hint, got, tt.want)
		}
	}
}

func TestParseStyleMods(t *testing.T) {
	raw := `Make the button pop.
<style selector=".cta" property="color" value="red"/>
<style selector='.hero' property='background' value='#222'/>`

	parsed := Parse(raw)
	if len(parsed.StyleMods) != 2 {
		t.Fatalf("expected 2 style mods, got %d", len(parsed.StyleMods))
	}
	want := StyleMod{Selector: ".cta", Property: "color", Value: "red"}
	if parsed.StyleMods[0] != want {
		t.Errorf("first mod = %+v, want %+v", parsed.StyleMods[0], want)
	}
	if parsed.StyleMods[1].Selector != ".hero" {
		t.Errorf("single-quoted attrs not parsed: %+v", parsed.StyleMods[1])
	}
}

func TestParseStyleTagIgnoresRealStyleElements(t *testing.T) {
	raw := "```html\n<style>body { color: blue; }</style>\n```"
	parsed := Parse(raw)
	if len(parsed.StyleMods) != 0 {
		t.Errorf("a document <style> element is not a style mod: %+v", parsed.StyleMods)
	}
}

func TestParseLayoutChanges(t *testing.T) {
	raw := `<layout selector=".features" type="grid" columns="3" gap="1rem"/>
<layout selector=".nav" type="flex" align="center" justify="space-between"/>
<layout selector=".bad" type="masonry"/>`

	parsed := Parse(raw)
	if len(parsed.LayoutChanges) != 2 {
		t.Fatalf("expected 2 layout changes (unknown type skipped), got %d", len(parsed.LayoutChanges))
	}
	first := parsed.LayoutChanges[0]
	if first.Type != LayoutGrid || first.Columns != 3 || first.Gap != "1rem" {
		t.Errorf("grid layout = %+v", first)
	}
	second := parsed.LayoutChanges[1]
	if second.Type != LayoutFlex || second.Justify != "space-between" {
		t.Errorf("flex layout = %+v", second)
	}
}

func TestParseIntentWirings(t *testing.T) {
	raw := `<intent on="#signup" action="open-form" label="Sign Up"/>
<intent on=".buy" action="checkout"/>`

	parsed := Parse(raw)
	if len(parsed.IntentWirings) != 2 {
		t.Fatalf("expected 2 intent wirings, got %d", len(parsed.IntentWirings))
	}
	if parsed.IntentWirings[0].Label != "Sign Up" {
		t.Errorf("label not captured: %+v", parsed.IntentWirings[0])
	}
	if parsed.IntentWirings[1].Label != "" {
		t.Errorf("label should be optional: %+v", parsed.IntentWirings[1])
	}
}

func TestParseBuilderActions(t *testing.T) {
	raw := `<action type="install_pack" pack="contact-form"/>
<action type="wire_button" selector="#cta" intent="open-form"/>`

	parsed := Parse(raw)
	if len(parsed.BuilderActions) != 2 {
		t.Fatalf("expected 2 builder actions, got %d", len(parsed.BuilderActions))
	}
	if parsed.BuilderActions[0].Type != ActionInstallPack {
		t.Errorf("first action type = %q", parsed.BuilderActions[0].Type)
	}
	if parsed.BuilderActions[0].Params["pack"] != "contact-form" {
		t.Errorf("params not captured: %+v", parsed.BuilderActions[0].Params)
	}
	if parsed.BuilderActions[1].Params["selector"] != "#cta" {
		t.Errorf("second action params = %+v", parsed.BuilderActions[1].Params)
	}
}

func TestParseMixedResponse(t *testing.T) {
	raw := `I updated the hero and wired the button.
<style selector=".hero" property="padding" value="4rem"/>
<action type="wire_button" selector="#cta" intent="signup"/>
` + "```html\n<div class=\"hero\">New hero</div>\n```"

	parsed := Parse(raw)
	if len(parsed.StyleMods) != 1 || len(parsed.BuilderActions) != 1 || len(parsed.CodeBlocks) != 1 {
		t.Errorf("tag families must be matched independently: %+v", parsed)
	}
	if !parsed.HasStructuredContent {
		t.Error("expected HasStructuredContent")
	}
}

func TestExtractSuggestions(t *testing.T) {
	raw := `Done! <suggest>Add a pricing section</suggest><suggest>Make the header sticky</suggest><suggest>  </suggest>`
	got := ExtractSuggestions(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %v", len(got), got)
	}
	if got[0] != "Add a pricing section" {
		t.Errorf("first suggestion = %q", got[0])
	}
}

func TestStripStructuredMarkup(t *testing.T) {
	raw := `I refreshed the palette.
<style selector=".cta" property="color" value="red"/>
` + "```html\n<div>stuff</div>\n```" + `
Let me know what you think.`

	got := StripStructuredMarkup(raw)
	if strings.Contains(got, "<style") || strings.Contains(got, "```") || strings.Contains(got, "<div>") {
		t.Errorf("markup left in prose: %q", got)
	}
	if !strings.Contains(got, "I refreshed the palette.") || !strings.Contains(got, "Let me know what you think.") {
		t.Errorf("prose lost: %q", got)
	}
}
