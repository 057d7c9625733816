package backend

import (
	"strings"

	"github.com/alantheprice/pagewright/pkg/prompts"
)

// TruncationNotice is appended wherever content was cut so the model knows it
// is not seeing everything. Truncation is always explicit, never silent.
const TruncationNotice = "\n\n[NOTE: content truncated to fit the request size limit]"

// ClampRequest trims a request to the upstream size ceiling: each message is
// clamped to maxMessageChars and the working code to maxDocumentChars.
// The returned flag reports whether anything was cut.
func ClampRequest(req Request, maxMessageChars, maxDocumentChars int) (Request, bool) {
	truncated := false

	if maxMessageChars > 0 {
		clamped := make([]prompts.Message, len(req.Messages))
		for i, msg := range req.Messages {
			content, cut := ClampText(msg.Content, maxMessageChars)
			if cut {
				truncated = true
			}
			clamped[i] = prompts.Message{Role: msg.Role, Content: content}
		}
		req.Messages = clamped
	}

	if maxDocumentChars > 0 {
		content, cut := ClampText(req.CurrentCode, maxDocumentChars)
		if cut {
			truncated = true
		}
		req.CurrentCode = content
	}

	return req, truncated
}

// ClampText cuts text down to the ceiling, marking the cut with the
// truncation notice. The notice fits inside the ceiling so the clamped
// result never exceeds it. The flag reports whether a cut happened.
func ClampText(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || len(text) <= maxChars {
		return text, false
	}

	keep := maxChars - len(TruncationNotice)
	if keep <= 0 {
		// Ceiling smaller than the notice; trim the notice itself.
		return TruncationNotice[:maxChars], true
	}
	cut := text[:keep]

	// Cut on a line boundary when one is reasonably close, so markup is not
	// sliced mid-tag.
	if i := strings.LastIndexByte(cut, '\n'); i > keep/2 {
		cut = cut[:i]
	}

	return cut + TruncationNotice, true
}
