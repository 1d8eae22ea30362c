package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/solenne/chatsense/backend/internal/model/conversation"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrInvalidRole     = errors.New("role must be 'user' or 'assistant'")
	ErrEmptyContent    = errors.New("message content is empty")
)

// Service owns ordered message history per conversation session. Sessions
// are held in memory and persisted on demand; each session carries its own
// lock so operations on different sessions never block each other.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry
	dir     string
}

type entry struct {
	mu      sync.Mutex
	session conversation.Session
}

// NewService bootstraps the session service. dir is where sessions are
// persisted by default.
func NewService(dir string) *Service {
	if dir == "" {
		dir = "saved_conversations"
	}
	return &Service{
		entries: make(map[string]*entry),
		dir:     dir,
	}
}

// CreateSession provisions a session. An empty id derives one from the
// creation time.
func (s *Service) CreateSession(_ context.Context, id string) (conversation.Session, error) {
	now := time.Now().UTC()
	if id == "" {
		id = "session_" + now.Format("20060102_150405")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; ok {
		return conversation.Session{}, ErrSessionExists
	}

	session := conversation.Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.entries[id] = &entry{session: session}
	return session, nil
}

// AppendMessage appends a turn to the session history and bumps UpdatedAt.
// Messages are immutable once appended.
func (s *Service) AppendMessage(_ context.Context, sessionID string, role conversation.Role, content string) (conversation.Message, error) {
	if !role.Valid() {
		return conversation.Message{}, ErrInvalidRole
	}
	if content == "" {
		return conversation.Message{}, ErrEmptyContent
	}

	ent, err := s.lookup(sessionID)
	if err != nil {
		return conversation.Message{}, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	message := conversation.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	ent.session.History = append(ent.session.History, message)
	ent.session.UpdatedAt = message.Timestamp
	return message, nil
}

// GetSession returns a snapshot of the session including a copied history.
func (s *Service) GetSession(_ context.Context, sessionID string) (conversation.Session, error) {
	ent, err := s.lookup(sessionID)
	if err != nil {
		return conversation.Session{}, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	return snapshot(ent.session), nil
}

// History returns a copy of the session's ordered messages. Mutating the
// returned slice does not touch internal state.
func (s *Service) History(_ context.Context, sessionID string) ([]conversation.Message, error) {
	ent, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	copied := make([]conversation.Message, len(ent.session.History))
	copy(copied, ent.session.History)
	return copied, nil
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ent, nil
}

func snapshot(session conversation.Session) conversation.Session {
	copied := session
	copied.History = make([]conversation.Message, len(session.History))
	copy(copied.History, session.History)
	return copied
}
