// Package history records every committed document mutation so the user can
// inspect what the assistant changed and roll the document back.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/alantheprice/pagewright/pkg/utils"
)

const historyFileName = "history.jsonl"

// Revision is one committed mutation: the document before and after, plus
// enough metadata to explain where the change came from.
type Revision struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`   // mutation kind: replace, snippet, element, styles
	Action    string    `json:"action"` // originating template action
	Prompt    string    `json:"prompt,omitempty"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	AfterHash string    `json:"afterHash"`
}

// Tracker appends revisions to the project's history log.
type Tracker struct {
	dir string
}

// NewTracker returns a tracker writing under the given dotdir (.pagewright).
func NewTracker(dir string) *Tracker {
	return &Tracker{dir: dir}
}

func (t *Tracker) path() string {
	return filepath.Join(t.dir, historyFileName)
}

// Record appends one committed mutation and returns its revision ID.
func (t *Tracker) Record(kind, action, prompt, before, after string) (string, error) {
	rev := Revision{
		ID:        uuid.NewString()[:8],
		Timestamp: time.Now(),
		Kind:      kind,
		Action:    action,
		Prompt:    prompt,
		Before:    before,
		After:     after,
		AfterHash: utils.ShortHash(after),
	}

	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.Marshal(rev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal revision: %w", err)
	}

	file, err := os.OpenFile(t.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open history log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return "", fmt.Errorf("failed to append revision: %w", err)
	}
	return rev.ID, nil
}

// List returns all revisions, most recent first. A missing log is an empty
// history, not an error.
func (t *Tracker) List() ([]Revision, error) {
	file, err := os.Open(t.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	defer file.Close()

	var revisions []Revision
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rev Revision
		if err := json.Unmarshal([]byte(line), &rev); err != nil {
			continue
		}
		revisions = append(revisions, rev)
	}
	if err := scanner.Err(); err != nil {
		return revisions, fmt.Errorf("failed to read history log: %w", err)
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].Timestamp.After(revisions[j].Timestamp)
	})
	return revisions, nil
}

// Get looks up one revision by ID (or unambiguous ID prefix).
func (t *Tracker) Get(id string) (*Revision, error) {
	revisions, err := t.List()
	if err != nil {
		return nil, err
	}

	var match *Revision
	for i := range revisions {
		if revisions[i].ID == id {
			return &revisions[i], nil
		}
		if strings.HasPrefix(revisions[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("revision id %q is ambiguous", id)
			}
			match = &revisions[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("revision %q not found", id)
	}
	return match, nil
}

// Rollback returns the document as it was before the given revision and
// records the rollback itself as a new revision, so rollbacks are visible in
// the history and can themselves be undone.
func (t *Tracker) Rollback(id, current string) (string, error) {
	rev, err := t.Get(id)
	if err != nil {
		return "", err
	}
	if _, err := t.Record("rollback", "rollback", "roll back to before "+rev.ID, current, rev.Before); err != nil {
		return "", err
	}
	return rev.Before, nil
}

// Diff renders a colored character diff of one revision's before → after.
func (r *Revision) Diff() string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(r.Before, r.After, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

// Summary renders one line for the history listing.
func (r *Revision) Summary() string {
	prompt := strings.TrimSpace(r.Prompt)
	if len(prompt) > 60 {
		prompt = prompt[:60] + "..."
	}
	return fmt.Sprintf("%s  %s  %-8s %-12s %s",
		r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.Kind, r.Action, prompt)
}
