package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	tracker := NewTracker(t.TempDir())

	id1, err := tracker.Record("replace", "full-control", "build a landing page", "", "<html>v1</html>")
	require.NoError(t, err)
	id2, err := tracker.Record("snippet", "add", "add a pricing section", "<html>v1</html>", "<html>v2</html>")
	require.NoError(t, err)

	revisions, err := tracker.List()
	require.NoError(t, err)
	require.Len(t, revisions, 2)

	// Most recent first.
	assert.Equal(t, id2, revisions[0].ID)
	assert.Equal(t, id1, revisions[1].ID)
	assert.Equal(t, "snippet", revisions[0].Kind)
	assert.Equal(t, "add", revisions[0].Action)
}

func TestListEmptyHistory(t *testing.T) {
	tracker := NewTracker(t.TempDir())
	revisions, err := tracker.List()
	require.NoError(t, err)
	assert.Empty(t, revisions)
}

func TestGetByPrefix(t *testing.T) {
	tracker := NewTracker(t.TempDir())

	id, err := tracker.Record("replace", "none", "", "a", "b")
	require.NoError(t, err)

	rev, err := tracker.Get(id[:4])
	require.NoError(t, err)
	assert.Equal(t, id, rev.ID)

	_, err = tracker.Get("zzzz")
	assert.Error(t, err)
}

func TestRollbackRestoresAndRecords(t *testing.T) {
	tracker := NewTracker(t.TempDir())

	id, err := tracker.Record("replace", "full-control", "", "<p>old</p>", "<p>new</p>")
	require.NoError(t, err)

	restored, err := tracker.Rollback(id, "<p>new</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>old</p>", restored)

	revisions, err := tracker.List()
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, "rollback", revisions[0].Kind)
	assert.Equal(t, "<p>new</p>", revisions[0].Before)
	assert.Equal(t, "<p>old</p>", revisions[0].After)
}

func TestDiffShowsChange(t *testing.T) {
	rev := Revision{Before: "hello world", After: "hello there"}
	diff := rev.Diff()
	assert.Contains(t, diff, "world")
	assert.Contains(t, diff, "there")
}
