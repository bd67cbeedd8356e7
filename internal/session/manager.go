package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tracker"
	"github.com/pablasso/plantrack/internal/util"
)

// ErrNoActiveSession is returned by branch operations before Start or Open.
var ErrNoActiveSession = errors.New("no active session")

// Manager tracks the active session of a store and implements the history
// source and record sink used by the tracker.
type Manager struct {
	store   Store
	current *Session
	now     func() time.Time
	logger  *zap.Logger
}

// NewManager creates a manager over store with no active session.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// Current returns a copy of the active session, or nil.
func (m *Manager) Current() *Session {
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Start creates a new empty session and makes it active.
func (m *Manager) Start(ctx context.Context, name string) (*Session, error) {
	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Name:      sessionName(name, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	m.current = sess
	m.logger.Info("session started", zap.String("session", sess.ID), zap.String("name", sess.Name))
	return m.Current(), nil
}

// Open switches the active session to id.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	sess, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	m.current = sess
	m.logger.Debug("session opened", zap.String("session", sess.ID))
	return m.Current(), nil
}

// Branch returns the records on the path from the root to the active leaf.
func (m *Manager) Branch(ctx context.Context) ([]plan.Record, error) {
	entries, err := m.BranchEntries(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]plan.Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record()
	}
	return records, nil
}

// BranchEntries returns the entries on the path from the root to the active leaf.
func (m *Manager) BranchEntries(ctx context.Context) ([]Entry, error) {
	if m.current == nil {
		return nil, ErrNoActiveSession
	}
	entries, err := m.store.Entries(ctx, m.current.ID)
	if err != nil {
		return nil, err
	}
	return BranchOf(entries, m.current.Leaf)
}

// Entries returns every entry of the active session tree in insertion order.
func (m *Manager) Entries(ctx context.Context) ([]Entry, error) {
	if m.current == nil {
		return nil, ErrNoActiveSession
	}
	return m.store.Entries(ctx, m.current.ID)
}

// AppendToolResult records a tool result as a child of the active leaf.
func (m *Manager) AppendToolResult(ctx context.Context, r tracker.ToolResult) error {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal tool details: %w", err)
	}
	return m.append(ctx, &Message{
		Role:       RoleToolResult,
		ToolName:   r.ToolName,
		ToolCallID: r.CallID,
		Content:    r.Text,
		Details:    details,
	})
}

// AppendMessage records a user or assistant message as a child of the active leaf.
func (m *Manager) AppendMessage(ctx context.Context, role, content string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("invalid message role %q", role)
	}
	return m.append(ctx, &Message{Role: role, Content: content})
}

// Navigate moves the active leaf to entryID anywhere in the session tree.
func (m *Manager) Navigate(ctx context.Context, entryID string) error {
	if m.current == nil {
		return ErrNoActiveSession
	}
	entries, err := m.store.Entries(ctx, m.current.ID)
	if err != nil {
		return err
	}
	if !containsEntry(entries, entryID) {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	if err := m.store.SetLeaf(ctx, m.current.ID, entryID); err != nil {
		return err
	}
	m.current.Leaf = entryID
	m.current.UpdatedAt = m.now()
	m.logger.Debug("session leaf moved", zap.String("session", m.current.ID), zap.String("leaf", entryID))
	return nil
}

// Fork copies the branch ending at entryID into a new session and makes it
// active. Entry ids are preserved.
func (m *Manager) Fork(ctx context.Context, entryID, name string) (*Session, error) {
	if m.current == nil {
		return nil, ErrNoActiveSession
	}
	entries, err := m.store.Entries(ctx, m.current.ID)
	if err != nil {
		return nil, err
	}
	if !containsEntry(entries, entryID) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	branch, err := BranchOf(entries, entryID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	fork := &Session{
		ID:         uuid.NewString(),
		Name:       sessionName(name, now),
		Leaf:       entryID,
		ForkedFrom: m.current.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.Create(ctx, fork); err != nil {
		return nil, fmt.Errorf("failed to create forked session: %w", err)
	}
	for _, e := range branch {
		if err := m.store.Append(ctx, fork.ID, e); err != nil {
			return nil, fmt.Errorf("failed to copy entry %s: %w", e.ID, err)
		}
	}

	m.logger.Info("session forked",
		zap.String("from", m.current.ID),
		zap.String("session", fork.ID),
		zap.String("at", entryID),
		zap.Int("entries", len(branch)))
	m.current = fork
	return m.Current(), nil
}

func (m *Manager) append(ctx context.Context, msg *Message) error {
	if m.current == nil {
		return ErrNoActiveSession
	}

	id, err := util.GenerateShortID()
	if err != nil {
		return fmt.Errorf("failed to generate entry id: %w", err)
	}
	e := Entry{
		ID:        id,
		ParentID:  m.current.Leaf,
		Type:      EntryTypeMessage,
		Timestamp: m.now(),
		Message:   msg,
	}
	if err := m.store.Append(ctx, m.current.ID, e); err != nil {
		return err
	}
	if err := m.store.SetLeaf(ctx, m.current.ID, e.ID); err != nil {
		return err
	}
	m.current.Leaf = e.ID
	m.current.UpdatedAt = e.Timestamp
	return nil
}

// BranchOf walks parent links from leaf to the root and returns the path in
// root-first order. An empty leaf is the empty branch.
func BranchOf(entries []Entry, leaf string) ([]Entry, error) {
	if leaf == "" {
		return nil, nil
	}

	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	var path []Entry
	seen := make(map[string]bool)
	for id := leaf; id != ""; {
		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("cycle in session tree at entry %s", id)
		}
		seen[id] = true
		path = append(path, e)
		id = e.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func containsEntry(entries []Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func sessionName(name string, now time.Time) string {
	if slug := util.Slugify(name); slug != "" {
		return slug
	}
	return "session-" + now.Format("20060102-150405")
}
