package prompts

import (
	"fmt"
	"os"
	"strings"
)

// Message represents a single message in a chat-like conversation with the
// generative backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- System Message Builders ---

// LoadPromptFromFile lets users override a built-in system prompt by dropping
// a text file under .pagewright/prompts/.
func LoadPromptFromFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	return string(content), nil
}

func systemPromptWithOverride(name, fallback string) string {
	content, err := LoadPromptFromFile(fmt.Sprintf(".pagewright/prompts/%s.txt", name))
	if err != nil {
		return fallback
	}
	return content
}

// GetCodeSystemMessage returns the system prompt for code mode: the model is
// expected to produce full documents or targeted markup using the builder's
// tag vocabulary.
func GetCodeSystemMessage() string {
	return systemPromptWithOverride("code",
		"You are a website builder assistant. You modify and generate website code on request.\n\n"+
			"OUTPUT FORMAT:\n"+
			"- For a complete page, return the FULL document in a fenced code block with a language hint, e.g. ```html ... ```.\n"+
			"- To write a specific file, wrap its complete contents in <file path=\"relative/path\">...</file>. Always include the entire file, never a fragment.\n"+
			"- For a targeted style change, emit <style selector=\".cta\" property=\"color\" value=\"red\"/> instead of regenerating the page.\n"+
			"- For layout changes, emit <layout selector=\".features\" type=\"grid\" columns=\"3\" gap=\"1rem\"/>. Supported types: grid, flex, stack.\n"+
			"- To wire an element to a behavior, emit <intent on=\"#signup\" action=\"open-form\" label=\"Sign Up\"/>.\n"+
			"- For builder operations, emit <action type=\"add_section\" section=\"pricing\"/>. Supported types: install_pack, wire_button, add_section, apply_style, modify_element, remove_section.\n\n"+
			"RULES:\n"+
			"- When the user asks for a small change, prefer the targeted tags over a full rewrite.\n"+
			"- When you do return a document, it must be complete and self-contained.\n"+
			"- Keep explanatory prose outside the code blocks and tags.\n")
}

// GetDesignSystemMessage returns the system prompt for design mode, which
// favors the targeted style and layout vocabulary over full rewrites.
func GetDesignSystemMessage() string {
	return systemPromptWithOverride("design",
		"You are a website design assistant focused on visual styling and layout.\n\n"+
			"Prefer targeted changes over rewrites:\n"+
			"- <style selector=\"...\" property=\"...\" value=\"...\"/> for individual CSS properties.\n"+
			"- <layout selector=\"...\" type=\"grid|flex|stack\" columns=\"...\" gap=\"...\" align=\"...\" justify=\"...\"/> for arrangement.\n"+
			"Only return a full document in a fenced ```html block when the user asks for a redesign.\n"+
			"Explain your design reasoning briefly outside the tags.\n")
}

// GetReviewSystemMessage returns the system prompt for review mode.
func GetReviewSystemMessage() string {
	return systemPromptWithOverride("review",
		"You are reviewing a website's code. Point out concrete problems with structure, "+
			"accessibility, responsiveness, and consistency. Do not emit code or builder tags "+
			"unless the user explicitly asks for a fix; describe what to change and why.\n")
}

// GetDebugSystemMessage returns the system prompt for debug mode.
func GetDebugSystemMessage() string {
	return systemPromptWithOverride("debug",
		"You are debugging a website. Identify the cause of the reported problem in the "+
			"current code, then return the corrected document in a fenced ```html block, or a "+
			"targeted <style .../> or <file path=\"...\">...</file> change when the fix is local. "+
			"State the root cause in one or two sentences before the fix.\n")
}

// SystemPromptForMode maps a backend mode to its system prompt. Unknown modes
// fall back to code mode.
func SystemPromptForMode(mode string) string {
	switch mode {
	case "design":
		return GetDesignSystemMessage()
	case "review":
		return GetReviewSystemMessage()
	case "debug":
		return GetDebugSystemMessage()
	default:
		return GetCodeSystemMessage()
	}
}

// SelectedElementContext renders the implicit-target note that is folded into
// the user turn when an element is selected in the preview.
func SelectedElementContext(selector, tagName, textContent string) string {
	text := strings.TrimSpace(textContent)
	if len(text) > 120 {
		text = text[:120] + "..."
	}
	return fmt.Sprintf("[Selected element: <%s> matching %q, text: %q. Apply the requested change to this element unless told otherwise.]",
		tagName, selector, text)
}

// BuildChatMessages constructs the message list for a backend request:
// mode system prompt, prior turns, then the new user turn (with the
// selected-element note folded in when present).
func BuildChatMessages(mode string, history []Message, userText, selectedContext string) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: SystemPromptForMode(mode)})
	messages = append(messages, history...)
	content := userText
	if selectedContext != "" {
		content = selectedContext + "\n\n" + userText
	}
	messages = append(messages, Message{Role: "user", Content: content})
	return messages
}
