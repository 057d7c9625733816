package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// startOfFenceRegex matches the beginning of a fenced code block, e.g. ``` or ```html.
	// It captures the language hint (if present) in the first submatch.
	startOfFenceRegex = regexp.MustCompile("^\\s*[>|]*```(\\S*)")

	// fileTagRegex matches a <file ...>...</file> region; attributes are parsed separately.
	fileTagRegex = regexp.MustCompile(`(?s)<file\b([^>]*)>(.*?)</file>`)

	// Self-closing builder tags. [^>] spans newlines, so attributes may wrap.
	styleTagRegex   = regexp.MustCompile(`<style\b([^>]*?)/>`)
	layoutTagRegex  = regexp.MustCompile(`<layout\b([^>]*?)/>`)
	intentTagRegex  = regexp.MustCompile(`<intent\b([^>]*?)/>`)
	actionTagRegex  = regexp.MustCompile(`<action\b([^>]*?)/>`)
	suggestTagRegex = regexp.MustCompile(`(?s)<suggest>(.*?)</suggest>`)

	// attrRegex matches key="value" or key='value' pairs inside a tag.
	attrRegex = regexp.MustCompile(`([a-zA-Z_][\w-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

var validLayoutTypes = map[string]bool{
	LayoutGrid:  true,
	LayoutFlex:  true,
	LayoutStack: true,
}

var validActionTypes = map[string]bool{
	ActionInstallPack:   true,
	ActionWireButton:    true,
	ActionAddSection:    true,
	ActionApplyStyle:    true,
	ActionModifyElement: true,
	ActionRemoveSection: true,
}

// Parse extracts every typed operation from one assistant message. It is a
// pure function and total: malformed or absent markup yields empty lists,
// never an error. Each tag family is matched independently, so multiple
// operation types may co-occur in one response. Unterminated tags are
// ignored; nested tags of the same family are not supported (the first
// well-formed match wins).
func Parse(raw string) *ParsedResponse {
	parsed := &ParsedResponse{
		Files:          extractFilePatches(raw),
		CodeBlocks:     extractCodeBlocks(raw),
		StyleMods:      extractStyleMods(raw),
		LayoutChanges:  extractLayoutChanges(raw),
		IntentWirings:  extractIntentWirings(raw),
		BuilderActions: extractBuilderActions(raw),
	}

	parsed.HasStructuredContent = len(parsed.Files) > 0 ||
		len(parsed.StyleMods) > 0 ||
		len(parsed.LayoutChanges) > 0 ||
		len(parsed.IntentWirings) > 0 ||
		len(parsed.BuilderActions) > 0

	return parsed
}

// parseTagAttrs reads the attribute list of a single tag into a map.
func parseTagAttrs(attrText string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRegex.FindAllStringSubmatch(attrText, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[m[1]] = value
	}
	return attrs
}

func extractFilePatches(raw string) []FilePatch {
	var patches []FilePatch
	index := make(map[string]int)

	for _, m := range fileTagRegex.FindAllStringSubmatch(raw, -1) {
		attrs := parseTagAttrs(m[1])
		path := strings.TrimSpace(attrs["path"])
		if path == "" {
			continue
		}
		content := strings.TrimSpace(m[2])
		if i, seen := index[path]; seen {
			// Last write for a path wins.
			patches[i].Content = content
			continue
		}
		index[path] = len(patches)
		patches = append(patches, FilePatch{Path: path, Content: content})
	}
	return patches
}

// extractCodeBlocks scans line by line for fenced regions, in document order.
// A fence left open at end of input is discarded rather than partially
// extracted.
func extractCodeBlocks(raw string) []CodeBlock {
	var blocks []CodeBlock
	var blockLines []string
	var language string
	inBlock := false

	for _, line := range strings.Split(raw, "\n") {
		if inBlock {
			if strings.TrimSpace(line) == "```" {
				blocks = append(blocks, CodeBlock{
					Language: language,
					Content:  strings.TrimSpace(strings.Join(blockLines, "\n")),
				})
				inBlock = false
				blockLines = nil
				continue
			}
			blockLines = append(blockLines, line)
			continue
		}

		if m := startOfFenceRegex.FindStringSubmatch(line); m != nil {
			inBlock = true
			language = NormalizeLanguage(m[1])
			blockLines = nil
		}
	}

	return blocks
}

// NormalizeLanguage lowercases a fence hint and folds the JavaScript-family
// aliases together, since they all render the same way.
func NormalizeLanguage(hint string) string {
	switch strings.ToLower(hint) {
	case "typescript", "ts", "tsx", "jsx", "js", "mjs", "cjs":
		return "javascript"
	case "htm":
		return "html"
	default:
		return strings.ToLower(hint)
	}
}

func extractStyleMods(raw string) []StyleMod {
	var mods []StyleMod
	for _, m := range styleTagRegex.FindAllStringSubmatch(raw, -1) {
		attrs := parseTagAttrs(m[1])
		if attrs["selector"] == "" || attrs["property"] == "" || attrs["value"] == "" {
			continue
		}
		mods = append(mods, StyleMod{
			Selector: attrs["selector"],
			Property: attrs["property"],
			Value:    attrs["value"],
		})
	}
	return mods
}

func extractLayoutChanges(raw string) []LayoutChange {
	var changes []LayoutChange
	for _, m := range layoutTagRegex.FindAllStringSubmatch(raw, -1) {
		attrs := parseTagAttrs(m[1])
		layoutType := strings.ToLower(attrs["type"])
		if attrs["selector"] == "" || !validLayoutTypes[layoutType] {
			continue
		}
		columns, _ := strconv.Atoi(attrs["columns"])
		changes = append(changes, LayoutChange{
			Selector: attrs["selector"],
			Type:     layoutType,
			Columns:  columns,
			Gap:      attrs["gap"],
			Align:    attrs["align"],
			Justify:  attrs["justify"],
		})
	}
	return changes
}

func extractIntentWirings(raw string) []IntentWiring {
	var wirings []IntentWiring
	for _, m := range intentTagRegex.FindAllStringSubmatch(raw, -1) {
		attrs := parseTagAttrs(m[1])
		if attrs["on"] == "" || attrs["action"] == "" {
			continue
		}
		wirings = append(wirings, IntentWiring{
			Selector: attrs["on"],
			Intent:   attrs["action"],
			Label:    attrs["label"],
		})
	}
	return wirings
}

func extractBuilderActions(raw string) []BuilderAction {
	var actions []BuilderAction
	for _, m := range actionTagRegex.FindAllStringSubmatch(raw, -1) {
		attrs := parseTagAttrs(m[1])
		actionType := strings.ToLower(attrs["type"])
		if !validActionTypes[actionType] {
			continue
		}
		params := make(map[string]string)
		for k, v := range attrs {
			if k != "type" {
				params[k] = v
			}
		}
		actions = append(actions, BuilderAction{Type: actionType, Params: params})
	}
	return actions
}

// ExtractSuggestions pulls follow-up suggestion chips from assistant prose.
func ExtractSuggestions(raw string) []string {
	var suggestions []string
	for _, m := range suggestTagRegex.FindAllStringSubmatch(raw, -1) {
		s := strings.TrimSpace(m[1])
		if s != "" {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

// StripStructuredMarkup removes the builder tag vocabulary and fenced code
// from assistant text, leaving only the prose for display in the chat panel.
func StripStructuredMarkup(raw string) string {
	prose := fileTagRegex.ReplaceAllString(raw, "")
	prose = styleTagRegex.ReplaceAllString(prose, "")
	prose = layoutTagRegex.ReplaceAllString(prose, "")
	prose = intentTagRegex.ReplaceAllString(prose, "")
	prose = actionTagRegex.ReplaceAllString(prose, "")
	prose = suggestTagRegex.ReplaceAllString(prose, "")

	var out []string
	inBlock := false
	for _, line := range strings.Split(prose, "\n") {
		if inBlock {
			if strings.TrimSpace(line) == "```" {
				inBlock = false
			}
			continue
		}
		if startOfFenceRegex.MatchString(line) {
			inBlock = true
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
