package merge

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/pagewright/pkg/classify"
	"github.com/alantheprice/pagewright/pkg/parser"
)

const baseDoc = `<!DOCTYPE html>
<html>
<head><title>Site</title></head>
<body>
<h1>Welcome</h1>
</body>
</html>`

func TestReplaceSwapsWholeDocument(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:            classify.KindReplace,
		ProposedContent: "<!DOCTYPE html><html><body>fresh</body></html>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html><body>fresh</body></html>", next)
}

func TestSnippetInsertsBeforeClosingBody(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:              classify.KindSnippet,
		ProposedContent:   `<section class="faq">Questions</section>`,
		OriginatingAction: classify.ActionAdd,
		CreatedAt:         time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(next, "</body>"), "body marker must survive exactly once")
	assert.Less(t, strings.Index(next, `class="faq"`), strings.Index(next, "</body>"),
		"snippet must land strictly before the closing body marker")
	assert.Contains(t, next, "<!-- pagewright:add 2025-03-14T09:30:00Z -->")
	assert.Contains(t, next, "<h1>Welcome</h1>", "existing content survives")
}

func TestSnippetAppendsWhenNoBodyMarker(t *testing.T) {
	doc := "<div><h1>Welcome</h1></div>"
	next, err := Apply(doc, classify.PendingMutation{
		Kind:              classify.KindSnippet,
		ProposedContent:   "<footer>fin</footer>",
		OriginatingAction: classify.ActionAdd,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(next, doc), "original content stays in place")
	assert.Contains(t, next, "<footer>fin</footer>")
}

func TestSnippetCommentRecordsDefaultAction(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:            classify.KindSnippet,
		ProposedContent: "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Contains(t, next, "<!-- pagewright:none ")
}

func TestElementPatchReplacesTargetOnly(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:            classify.KindElement,
		ProposedContent: "<h1>Hi</h1>",
		TargetSelector:  "h1",
	})
	require.NoError(t, err)
	assert.Contains(t, next, "<h1>Hi</h1>")
	assert.NotContains(t, next, "Welcome")
	assert.Contains(t, next, "<title>Site</title>", "rest of the document untouched")
}

func TestElementPatchFailsOnStaleSelector(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:            classify.KindElement,
		ProposedContent: "<h2>nope</h2>",
		TargetSelector:  "#missing",
	})
	assert.Error(t, err)
	assert.Equal(t, baseDoc, next, "document unchanged when the selector is stale")
}

func TestOverrideBlockCreatedInsideHead(t *testing.T) {
	m := classify.PendingMutation{
		Kind:   classify.KindStyles,
		Styles: []parser.StyleMod{{Selector: ".cta", Property: "color", Value: "red"}},
	}
	next, err := Apply(baseDoc, m)
	require.NoError(t, err)

	assert.Contains(t, next, OverrideBlockOpen)
	assert.Contains(t, next, ".cta { color: red !important; }")
	assert.Less(t, strings.Index(next, OverrideBlockOpen), strings.Index(next, "</head>"),
		"override block belongs inside head")
}

func TestOverrideBlockIsAppendOnlyNotDeduplicated(t *testing.T) {
	m := classify.PendingMutation{
		Kind:   classify.KindStyles,
		Styles: []parser.StyleMod{{Selector: ".cta", Property: "color", Value: "red"}},
	}

	once, err := Apply(baseDoc, m)
	require.NoError(t, err)
	twice, err := Apply(once, m)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(twice, ".cta { color: red !important; }"),
		"same rule applied twice appears twice")
	assert.Equal(t, 1, strings.Count(twice, OverrideBlockOpen),
		"all rules accumulate in one block")
}

func TestOverrideBlockAppendsWhenNoHead(t *testing.T) {
	doc := "<body><p>bare</p></body>"
	next, err := Apply(doc, classify.PendingMutation{
		Kind:   classify.KindStyles,
		Styles: []parser.StyleMod{{Selector: "p", Property: "margin", Value: "0"}},
	})
	require.NoError(t, err)
	assert.Contains(t, next, "p { margin: 0 !important; }")
	assert.Less(t, strings.Index(next, OverrideBlockOpen), strings.Index(next, "</body>"))
}

func TestLayoutRulesSynthesis(t *testing.T) {
	tests := []struct {
		name   string
		change parser.LayoutChange
		want   []string
	}{
		{
			name:   "grid with columns and gap",
			change: parser.LayoutChange{Selector: ".features", Type: parser.LayoutGrid, Columns: 3, Gap: "1rem"},
			want:   []string{"display: grid !important;", "grid-template-columns: repeat(3, 1fr) !important;", "gap: 1rem !important;"},
		},
		{
			name:   "grid defaults to two columns",
			change: parser.LayoutChange{Selector: ".features", Type: parser.LayoutGrid},
			want:   []string{"repeat(2, 1fr)"},
		},
		{
			name:   "flex with alignment",
			change: parser.LayoutChange{Selector: ".nav", Type: parser.LayoutFlex, Align: "center", Justify: "space-between"},
			want:   []string{"display: flex !important;", "align-items: center !important;", "justify-content: space-between !important;"},
		},
		{
			name:   "stack is a column flex",
			change: parser.LayoutChange{Selector: ".list", Type: parser.LayoutStack},
			want:   []string{"flex-direction: column !important;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := LayoutRules(tt.change)
			require.Len(t, rules, 1)
			for _, fragment := range tt.want {
				assert.Contains(t, rules[0], fragment)
			}
		})
	}
}

func TestIntentWiringStampsAttributes(t *testing.T) {
	doc := `<!DOCTYPE html><html><head></head><body><button id="signup">Join</button></body></html>`
	next, err := Apply(doc, classify.PendingMutation{
		Kind:    classify.KindStyles,
		Wirings: []parser.IntentWiring{{Selector: "#signup", Intent: "open-form", Label: "Sign Up"}},
	})
	require.NoError(t, err)
	assert.Contains(t, next, `data-intent="open-form"`)
	assert.Contains(t, next, `data-intent-label="Sign Up"`)
}

func TestIntentWiringDefaultsLabelFromIntent(t *testing.T) {
	doc := `<!DOCTYPE html><html><head></head><body><button id="book">Book</button></body></html>`
	next, err := Apply(doc, classify.PendingMutation{
		Kind:    classify.KindStyles,
		Wirings: []parser.IntentWiring{{Selector: "#book", Intent: "open_booking-form"}},
	})
	require.NoError(t, err)
	assert.Contains(t, next, `data-intent="open_booking-form"`)
	assert.Contains(t, next, `data-intent-label="Open Booking Form"`)
}

func TestIntentWiringSkipsUnresolvedSelectorsWithoutReserializing(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:    classify.KindStyles,
		Wirings: []parser.IntentWiring{{Selector: "#missing", Intent: "noop"}},
	})
	require.NoError(t, err)
	assert.Equal(t, baseDoc, next, "nothing wired, document text untouched")
}

func TestActionsMutationLeavesDocumentAlone(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:    classify.KindActions,
		Actions: []parser.BuilderAction{{Type: parser.ActionInstallPack, Params: map[string]string{"pack": "blog"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, baseDoc, next)
}

func TestStylesAndLayoutsShareOneBlock(t *testing.T) {
	next, err := Apply(baseDoc, classify.PendingMutation{
		Kind:    classify.KindStyles,
		Styles:  []parser.StyleMod{{Selector: "h1", Property: "font-size", Value: "3rem"}},
		Layouts: []parser.LayoutChange{{Selector: ".cards", Type: parser.LayoutGrid, Columns: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(next, OverrideBlockOpen))
	assert.Contains(t, next, "h1 { font-size: 3rem !important; }")
	assert.Contains(t, next, "repeat(4, 1fr)")
}
