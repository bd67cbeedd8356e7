package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tracker"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func newTestManager(t *testing.T, s Store) *Manager {
	t.Helper()
	m := NewManager(s, nil)
	_, err := m.Start(context.Background(), "Test Session")
	require.NoError(t, err)
	return m
}

func TestManager_StartNamesSession(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		m := newTestManager(t, s)
		cur := m.Current()
		require.NotNil(t, cur)
		assert.Equal(t, "test-session", cur.Name)
		assert.NotEmpty(t, cur.ID)

		other, err := m.Start(context.Background(), "")
		require.NoError(t, err)
		assert.Regexp(t, `^session-\d{8}-\d{6}$`, other.Name)
	})
}

func TestManager_NoActiveSession(t *testing.T) {
	m := NewManager(NewJSONLStore(t.TempDir()), nil)
	ctx := context.Background()

	_, err := m.Branch(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.ErrorIs(t, m.AppendMessage(ctx, RoleUser, "hi"), ErrNoActiveSession)
	assert.ErrorIs(t, m.Navigate(ctx, "x"), ErrNoActiveSession)
	_, err = m.Fork(ctx, "x", "")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Nil(t, m.Current())
}

func TestManager_AppendBuildsChain(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := newTestManager(t, s)

		require.NoError(t, m.AppendMessage(ctx, RoleUser, "plan this"))
		require.NoError(t, m.AppendMessage(ctx, RoleAssistant, "ok"))

		entries, err := m.BranchEntries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Empty(t, entries[0].ParentID)
		assert.Equal(t, entries[0].ID, entries[1].ParentID)
		assert.Equal(t, entries[1].ID, m.Current().Leaf)

		loaded, err := s.Load(ctx, m.Current().ID)
		require.NoError(t, err)
		assert.Equal(t, entries[1].ID, loaded.Leaf, "leaf is persisted")
	})
}

func TestManager_AppendMessageRejectsToolRole(t *testing.T) {
	m := newTestManager(t, NewJSONLStore(t.TempDir()))
	assert.Error(t, m.AppendMessage(context.Background(), RoleToolResult, "x"))
}

func TestManager_TrackerRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := newTestManager(t, s)
		tr := tracker.New(m, m)
		require.NoError(t, tr.HandleEvent(ctx, tracker.EventSessionStart))

		_, err := tr.Execute(ctx, "c1", tracker.Params{Action: "init", Tasks: []string{"A", "B"}})
		require.NoError(t, err)
		_, err = tr.Execute(ctx, "c2", tracker.Params{Action: "update", Index: intPtr(0), Status: strPtr("complete")})
		require.NoError(t, err)
		_, err = tr.Execute(ctx, "c3", tracker.Params{Action: "update", Index: intPtr(9), Status: strPtr("complete")})
		require.NoError(t, err)

		reopened := NewManager(s, nil)
		_, err = reopened.Open(ctx, m.Current().ID)
		require.NoError(t, err)
		replayed := tracker.New(reopened, reopened)
		require.NoError(t, replayed.HandleEvent(ctx, tracker.EventSessionSwitch))

		assert.Equal(t, tr.Tasks(), replayed.Tasks())
		assert.Equal(t, []plan.Task{
			{Name: "A", Status: plan.StatusComplete},
			{Name: "B", Status: plan.StatusPending},
		}, replayed.Tasks())

		entries, err := reopened.BranchEntries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		d, ok := entries[2].Details()
		require.True(t, ok)
		assert.Equal(t, plan.OutOfRangeTag(9), d.Error)
		assert.Equal(t, "c3", entries[2].Message.ToolCallID)
	})
}

func TestManager_NavigateRewindsPlan(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := newTestManager(t, s)
		tr := tracker.New(m, m)

		_, err := tr.Execute(ctx, "c1", tracker.Params{Action: "init", Tasks: []string{"A"}})
		require.NoError(t, err)
		initEntry := m.Current().Leaf
		_, err = tr.Execute(ctx, "c2", tracker.Params{Action: "update", Index: intPtr(0), Status: strPtr("in_progress")})
		require.NoError(t, err)

		require.NoError(t, m.Navigate(ctx, initEntry))
		require.NoError(t, tr.HandleEvent(ctx, tracker.EventSessionTree))
		assert.Equal(t, []plan.Task{{Name: "A", Status: plan.StatusPending}}, tr.Tasks())

		// A new call on the rewound branch starts a sibling of the old update.
		_, err = tr.Execute(ctx, "c3", tracker.Params{Action: "update", Index: intPtr(0), Status: strPtr("complete")})
		require.NoError(t, err)

		all, err := m.Entries(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
		branch, err := m.BranchEntries(ctx)
		require.NoError(t, err)
		assert.Len(t, branch, 2)
		assert.Equal(t, initEntry, branch[1].ParentID)

		assert.ErrorIs(t, m.Navigate(ctx, "missing"), ErrEntryNotFound)
	})
}

func TestManager_Fork(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := newTestManager(t, s)
		tr := tracker.New(m, m)

		_, err := tr.Execute(ctx, "c1", tracker.Params{Action: "init", Tasks: []string{"A", "B"}})
		require.NoError(t, err)
		forkPoint := m.Current().Leaf
		_, err = tr.Execute(ctx, "c2", tracker.Params{Action: "clear"})
		require.NoError(t, err)
		original := m.Current()

		fork, err := m.Fork(ctx, forkPoint, "alt")
		require.NoError(t, err)
		assert.Equal(t, "alt", fork.Name)
		assert.Equal(t, original.ID, fork.ForkedFrom)
		assert.Equal(t, forkPoint, fork.Leaf)
		assert.Equal(t, fork.ID, m.Current().ID)

		require.NoError(t, tr.HandleEvent(ctx, tracker.EventSessionFork))
		assert.Len(t, tr.Tasks(), 2, "fork sees the plan as of the fork point")

		// The original session is untouched.
		_, err = m.Open(ctx, original.ID)
		require.NoError(t, err)
		require.NoError(t, tr.HandleEvent(ctx, tracker.EventSessionSwitch))
		assert.Empty(t, tr.Tasks())

		_, err = m.Fork(ctx, "missing", "")
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})
}

func TestBranchOf(t *testing.T) {
	entries := []Entry{
		{ID: "a"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "b"},
		{ID: "d", ParentID: "a"},
	}

	ids := func(es []Entry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.ID
		}
		return out
	}

	got, err := BranchOf(entries, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))

	got, err = BranchOf(entries, "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, ids(got))

	got, err = BranchOf(entries, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = BranchOf([]Entry{{ID: "x", ParentID: "gone"}}, "x")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = BranchOf([]Entry{{ID: "x", ParentID: "y"}, {ID: "y", ParentID: "x"}}, "x")
	assert.Error(t, err)
}

func TestEntry_Record(t *testing.T) {
	e := Entry{
		ID:   "e1",
		Type: EntryTypeMessage,
		Message: &Message{
			Role:     RoleToolResult,
			ToolName: plan.ToolName,
			Details:  []byte(`{"action":"clear","tasks":[]}`),
		},
	}
	r := e.Record()
	assert.True(t, r.IsPlanResult())
	require.NotNil(t, r.Details)
	assert.Equal(t, plan.ActionClear, r.Details.Action)

	e.Message.Details = []byte(`{garbage`)
	_, ok := e.Details()
	assert.False(t, ok, "undecodable details are skipped")

	bare := Entry{ID: "e2", Type: EntryTypeMessage}
	assert.False(t, bare.Record().IsPlanResult())
}
