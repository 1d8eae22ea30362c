package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/solenne/chatsense/backend/internal/model/conversation"
)

// ErrCorruptState marks a persisted session whose required structure is
// missing or unreadable.
var ErrCorruptState = errors.New("persisted session is corrupt")

// persistedSession is the on-disk form: one JSON document per session.
// Unknown extra fields in old files are ignored on load.
type persistedSession struct {
	SessionID string                 `json:"session_id"`
	CreatedAt *time.Time             `json:"created_at,omitempty"`
	UpdatedAt *time.Time             `json:"updated_at,omitempty"`
	History   []conversation.Message `json:"history"`
}

// Persist writes the session to disk. An empty path derives one from the
// session id inside the configured directory. The write goes through a temp
// file and rename so a crash mid-write never leaves a partial session.
func (s *Service) Persist(_ context.Context, sessionID, path string) (string, error) {
	ent, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	ent.mu.Lock()
	record := persistedSession{
		SessionID: ent.session.ID,
		CreatedAt: timePtr(ent.session.CreatedAt),
		UpdatedAt: timePtr(ent.session.UpdatedAt),
		History:   append([]conversation.Message(nil), ent.session.History...),
	}
	ent.mu.Unlock()

	if record.History == nil {
		record.History = []conversation.Message{}
	}
	if path == "" {
		path = filepath.Join(s.dir, sessionID+".json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}

	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write session %s: %w", sessionID, err)
	}
	return path, nil
}

// Load reads a persisted session and installs it into the service,
// replacing any in-memory session with the same id. Absent optional fields
// default: id from the filename, timestamps to now, history to empty.
func (s *Service) Load(_ context.Context, path string) (conversation.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return conversation.Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return conversation.Session{}, fmt.Errorf("%w: %s: %v", ErrCorruptState, path, err)
	}

	now := time.Now().UTC()
	session := conversation.Session{
		ID:        record.SessionID,
		CreatedAt: now,
		UpdatedAt: now,
		History:   record.History,
	}
	if session.ID == "" {
		session.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if record.CreatedAt != nil {
		session.CreatedAt = *record.CreatedAt
	}
	if record.UpdatedAt != nil {
		session.UpdatedAt = *record.UpdatedAt
	}

	s.mu.Lock()
	s.entries[session.ID] = &entry{session: snapshot(session)}
	s.mu.Unlock()

	return session, nil
}

// Delete removes a session from memory and deletes its default persisted
// representation if present.
func (s *Service) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	s.mu.Unlock()

	path := filepath.Join(s.dir, sessionID+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			if !ok {
				return ErrSessionNotFound
			}
			return nil
		}
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List scans a directory for persisted sessions, newest first. Malformed
// files are skipped, not fatal. An empty dir uses the configured default.
func (s *Service) List(_ context.Context, dir string) ([]conversation.Summary, error) {
	if dir == "" {
		dir = s.dir
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []conversation.Summary{}, nil
		}
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	summaries := make([]conversation.Summary, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[session] skipping unreadable file %s: %v", path, err)
			continue
		}
		record, err := decodeRecord(data)
		if err != nil {
			log.Printf("[session] skipping malformed file %s: %v", path, err)
			continue
		}

		summary := conversation.Summary{
			SessionID:    record.SessionID,
			Filepath:     path,
			MessageCount: len(record.History),
		}
		if summary.SessionID == "" {
			summary.SessionID = strings.TrimSuffix(file.Name(), ".json")
		}
		if record.CreatedAt != nil {
			summary.CreatedAt = *record.CreatedAt
		}
		if record.UpdatedAt != nil {
			summary.UpdatedAt = *record.UpdatedAt
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func decodeRecord(data []byte) (persistedSession, error) {
	var record persistedSession
	if err := json.Unmarshal(data, &record); err != nil {
		return persistedSession{}, err
	}
	if record.History == nil {
		record.History = []conversation.Message{}
	}
	for i, msg := range record.History {
		if !msg.Role.Valid() {
			return persistedSession{}, fmt.Errorf("history[%d] has invalid role %q", i, msg.Role)
		}
		if msg.Content == "" {
			return persistedSession{}, fmt.Errorf("history[%d] has empty content", i)
		}
	}
	return record, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
