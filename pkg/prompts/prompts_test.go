package prompts

import (
	"strings"
	"testing"
)

func TestSystemPromptForMode(t *testing.T) {
	tests := []struct {
		mode     string
		contains string
	}{
		{"code", "<file path="},
		{"design", "grid|flex|stack"},
		{"review", "reviewing"},
		{"debug", "debugging"},
		{"unknown", "website builder assistant"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got := SystemPromptForMode(tt.mode)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("prompt for mode %q does not contain %q", tt.mode, tt.contains)
			}
		})
	}
}

func TestBuildChatMessages(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "make a landing page"},
		{Role: "assistant", Content: "done"},
	}
	got := BuildChatMessages("code", history, "change the headline", "")

	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}
	if got[0].Role != "system" {
		t.Errorf("first message role = %q, want system", got[0].Role)
	}
	if got[3].Role != "user" || got[3].Content != "change the headline" {
		t.Errorf("last message = %+v, want the new user turn", got[3])
	}
}

func TestBuildChatMessagesFoldsSelection(t *testing.T) {
	ctx := SelectedElementContext("h1.title", "h1", "Welcome")
	got := BuildChatMessages("code", nil, "make it blue", ctx)

	last := got[len(got)-1]
	if !strings.Contains(last.Content, "h1.title") {
		t.Errorf("selected-element context missing from user turn: %q", last.Content)
	}
	if !strings.HasSuffix(last.Content, "make it blue") {
		t.Errorf("user text should follow the context note: %q", last.Content)
	}
}

func TestSelectedElementContextTruncatesText(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := SelectedElementContext("p", "p", long)
	if len(got) > 300 {
		t.Errorf("context note not truncated: %d chars", len(got))
	}
	if !strings.Contains(got, "...") {
		t.Error("expected ellipsis after truncation")
	}
}
