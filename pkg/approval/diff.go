package approval

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	redColor   = "\x1b[31m"
	greenColor = "\x1b[32m"
	resetColor = "\x1b[0m"
)

// DiffStats summarizes a proposed change against the current document.
type DiffStats struct {
	Additions int
	Deletions int
}

// DiffPreview renders a colored character diff of current → proposed for the
// review surface, with an additions/deletions summary line on top.
func DiffPreview(current, proposed string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(current, proposed, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	stats := statsFromDiffs(diffs)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s+%d%s %s-%d%s\n",
		greenColor, stats.Additions, resetColor,
		redColor, stats.Deletions, resetColor))
	b.WriteString(dmp.DiffPrettyText(diffs))
	return b.String()
}

// Stats computes line-level addition/deletion counts for current → proposed.
func Stats(current, proposed string) DiffStats {
	dmp := diffmatchpatch.New()
	return statsFromDiffs(dmp.DiffMain(current, proposed, true))
}

func statsFromDiffs(diffs []diffmatchpatch.Diff) DiffStats {
	var stats DiffStats
	for _, d := range diffs {
		lines := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") && strings.TrimSpace(d.Text) != "" {
			lines++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Additions += lines
		case diffmatchpatch.DiffDelete:
			stats.Deletions += lines
		}
	}
	return stats
}
