package parser

// ParsedResponse holds every typed operation extracted from one assistant
// message. It is derived purely from the message text and recomputed per
// message, never persisted.
type ParsedResponse struct {
	Files          []FilePatch
	CodeBlocks     []CodeBlock
	StyleMods      []StyleMod
	LayoutChanges  []LayoutChange
	IntentWirings  []IntentWiring
	BuilderActions []BuilderAction

	// HasStructuredContent is true when any list besides CodeBlocks is
	// non-empty, letting the classifier prefer structured operations over
	// code-block heuristics.
	HasStructuredContent bool
}

// FilePatch is a complete file emitted inside a <file path="..."> tag.
// Paths are unique within one response; the last write for a path wins.
type FilePatch struct {
	Path    string
	Content string
}

// CodeBlock is one fenced code region. Language is the normalized hint, or
// empty when the fence carried none.
type CodeBlock struct {
	Language string
	Content  string
}

// StyleMod is a single CSS property edit from a self-closing <style/> tag.
type StyleMod struct {
	Selector string
	Property string
	Value    string
}

// Layout types accepted in a <layout/> tag.
const (
	LayoutGrid  = "grid"
	LayoutFlex  = "flex"
	LayoutStack = "stack"
)

// LayoutChange rearranges the children of the selected container.
type LayoutChange struct {
	Selector string
	Type     string // grid, flex or stack
	Columns  int
	Gap      string
	Align    string
	Justify  string
}

// IntentWiring binds an element to a named behavior via an <intent/> tag.
type IntentWiring struct {
	Selector string
	Intent   string
	Label    string
}

// Builder action types accepted in an <action/> tag.
const (
	ActionInstallPack   = "install_pack"
	ActionWireButton    = "wire_button"
	ActionAddSection    = "add_section"
	ActionApplyStyle    = "apply_style"
	ActionModifyElement = "modify_element"
	ActionRemoveSection = "remove_section"
)

// BuilderAction is a named backend-side effect requested by the model. It is
// never merged into document text; execution always requires confirmation.
type BuilderAction struct {
	Type   string
	Params map[string]string
}
