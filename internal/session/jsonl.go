package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const maxEntryLineSize = 4 * 1024 * 1024

// JSONLStore keeps each session as <id>.json metadata plus an append-only
// <id>.jsonl entry log.
type JSONLStore struct {
	dir string
}

// NewJSONLStore creates a store for the given sessions directory.
func NewJSONLStore(dir string) *JSONLStore {
	return &JSONLStore{dir: dir}
}

// Dir returns the sessions directory.
func (s *JSONLStore) Dir() string {
	return s.dir
}

// Create persists a new session and an empty entry log.
func (s *JSONLStore) Create(ctx context.Context, sess *Session) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	if _, err := os.Stat(s.metaPath(sess.ID)); err == nil {
		return fmt.Errorf("%w: %s", ErrSessionExists, sess.ID)
	}

	if err := s.save(sess); err != nil {
		return err
	}

	f, err := os.OpenFile(s.logPath(sess.ID), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create entry log: %w", err)
	}
	return f.Close()
}

// Load retrieves a session by id.
func (s *JSONLStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &sess, nil
}

// List returns all sessions ordered by creation time. Unreadable metadata
// files are skipped.
func (s *JSONLStore) List(ctx context.Context) ([]*Session, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob sessions: %w", err)
	}

	var sessions []*Session
	for _, match := range matches {
		data, err := os.ReadFile(match)
		if err != nil {
			continue
		}

		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		sessions = append(sessions, &sess)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Delete removes a session's files. Returns nil if they don't exist.
func (s *JSONLStore) Delete(ctx context.Context, id string) error {
	for _, path := range []string{s.metaPath(id), s.logPath(id)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session %s: %w", id, err)
		}
	}
	return nil
}

// SetLeaf moves the active branch of a session.
func (s *JSONLStore) SetLeaf(ctx context.Context, id, leaf string) error {
	sess, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	sess.Leaf = leaf
	sess.UpdatedAt = time.Now()
	return s.save(sess)
}

// Append writes one entry as a JSON line to the session log.
func (s *JSONLStore) Append(ctx context.Context, id string, e Entry) error {
	if _, err := os.Stat(s.metaPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return fmt.Errorf("failed to stat session: %w", err)
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.logPath(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open entry log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

// Entries reads the session log in order.
func (s *JSONLStore) Entries(ctx context.Context, id string) ([]Entry, error) {
	f, err := os.Open(s.logPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			if _, statErr := os.Stat(s.metaPath(id)); statErr == nil {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to open entry log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEntryLineSize)

	var entries []Entry
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("failed to parse entry log %s line %d: %w", id, lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entry log: %w", err)
	}
	return entries, nil
}

// Close implements Store. The JSONL store holds no open handles.
func (s *JSONLStore) Close() error {
	return nil
}

// save atomically writes session metadata: temp file then rename.
func (s *JSONLStore) save(sess *Session) error {
	path := s.metaPath(sess.ID)
	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write session temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename session temp file: %w", err)
	}
	return nil
}

func (s *JSONLStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *JSONLStore) logPath(id string) string {
	return filepath.Join(s.dir, id+".jsonl")
}
