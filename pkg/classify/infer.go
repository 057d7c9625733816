package classify

import (
	"regexp"
	"strings"
)

// actionEntry maps natural language onto one TemplateAction. Each entry
// carries whole-word synonyms and regex patterns; patterns weigh more than
// synonyms and priority breaks ties between overlapping vocabularies.
type actionEntry struct {
	Action   TemplateAction
	Synonyms []string
	Patterns []*regexp.Regexp
	Priority int

	synonymPatterns []*regexp.Regexp
}

var actionCorpus = []actionEntry{
	{
		Action: ActionFullControl,
		Synonyms: []string{
			"start over", "from scratch", "rebuild", "redesign", "regenerate",
			"new website", "new site", "whole page", "entire page",
			"replace everything", "start fresh",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(start|begin)\s+(over|fresh|again)`),
			regexp.MustCompile(`(?i)from\s+scratch`),
			regexp.MustCompile(`(?i)(rebuild|redesign|regenerate|redo)\s+(the\s+)?(whole\s+|entire\s+)?(site|page|website|thing)`),
			regexp.MustCompile(`(?i)(make|build|create|give)\s+(me\s+)?a\s+(brand\s+)?new\s+(site|website|page)`),
		},
		Priority: 120,
	},
	{
		Action: ActionRemove,
		Synonyms: []string{
			"remove", "delete", "get rid of", "take out", "take away",
			"strip out", "drop the", "hide the",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(remove|delete)\s+(the|this|that|my|all)`),
			regexp.MustCompile(`(?i)get\s+rid\s+of`),
			regexp.MustCompile(`(?i)take\s+(out|away|off)\s+(the|this|that)`),
		},
		Priority: 110,
	},
	{
		Action: ActionAdd,
		Synonyms: []string{
			"add", "insert", "include", "append", "attach",
			"new section", "another section",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(add|insert|include)\s+(a|an|the|some|more)`),
			regexp.MustCompile(`(?i)(create|put)\s+(a|an)\s+(new\s+)?(section|button|form|header|footer|nav|navbar|gallery|hero|banner|testimonial|pricing)`),
			regexp.MustCompile(`(?i)i\s+(want|need)\s+(a|an)\s+(section|button|form|page\s+area)`),
		},
		Priority: 100,
	},
	{
		Action: ActionRestyle,
		Synonyms: []string{
			"restyle", "recolor", "theme", "palette", "font", "color", "colour",
			"background", "styling", "prettier", "dark mode", "light mode",
			"spacing", "padding", "margin", "rounded", "shadow",
			"red", "blue", "green", "purple", "orange", "yellow", "pink",
			"black", "white", "gray",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(change|update|make|set)\s+.*(color|colour|font|background|style|theme|palette)`),
			regexp.MustCompile(`(?i)make\s+(it|this|the\s+\w+)\s+(look\s+)?(prettier|nicer|modern|cleaner|bolder|sleeker)`),
			regexp.MustCompile(`(?i)(bigger|smaller|larger)\s+(text|font|heading|title)`),
		},
		Priority: 95,
	},
	{
		Action: ActionModify,
		Synonyms: []string{
			"change", "update", "edit", "modify", "rename", "fix",
			"adjust", "tweak", "reword", "correct", "swap",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(change|update|edit|modify|adjust|tweak|reword)\s+(the|this|that|my|it)`),
			regexp.MustCompile(`(?i)fix\s+(the|this|that|a)`),
			regexp.MustCompile(`(?i)instead\s+of`),
			regexp.MustCompile(`(?i)should\s+say`),
		},
		Priority: 90,
	},
	{
		Action: ActionSuggest,
		Synonyms: []string{
			"suggest", "suggestion", "suggestions", "recommend", "ideas",
			"advice", "feedback", "thoughts", "improve",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)what\s+(should|could|would)\s`),
			regexp.MustCompile(`(?i)(any|some|got)\s+(ideas|suggestions|recommendations|tips)`),
			regexp.MustCompile(`(?i)how\s+(can|do|would)\s+.*(improve|better)`),
			regexp.MustCompile(`(?i)what\s+do\s+you\s+think`),
		},
		Priority: 80,
	},
}

func init() {
	for i := range actionCorpus {
		for _, syn := range actionCorpus[i].Synonyms {
			p := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(syn) + `\b`)
			actionCorpus[i].synonymPatterns = append(actionCorpus[i].synonymPatterns, p)
		}
	}
}

// InferAction classifies what kind of change the user is asking for. Scoring
// favors pattern hits over synonym hits, with entry priority as the
// tiebreaker; text matching nothing yields ActionNone.
func InferAction(userText string) TemplateAction {
	lower := strings.ToLower(userText)
	best := ActionNone
	bestScore := 0.0

	for _, entry := range actionCorpus {
		score := 0.0

		for _, pattern := range entry.Patterns {
			if pattern.MatchString(lower) {
				score += 50.0 + float64(entry.Priority)/10.0
				break
			}
		}

		for i, pattern := range entry.synonymPatterns {
			if pattern.MatchString(lower) {
				score += 20.0 + float64(len(entry.Synonyms[i]))/2.0 + float64(entry.Priority)/20.0
				break
			}
		}

		if score == 0 {
			continue
		}
		score += float64(entry.Priority) / 50.0

		if score > bestScore {
			bestScore = score
			best = entry.Action
		}
	}

	return best
}
