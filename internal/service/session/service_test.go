package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/solenne/chatsense/backend/internal/model/conversation"
	session "github.com/solenne/chatsense/backend/internal/service/session"
)

func TestCreateSessionDefaultID(t *testing.T) {
	svc := session.NewService(t.TempDir())
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated session id")
	}
	if created.CreatedAt != created.UpdatedAt {
		t.Fatal("expected created_at == updated_at on creation")
	}

	got, err := svc.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, created.ID)
	}
}

func TestCreateSessionDuplicateID(t *testing.T) {
	svc := session.NewService(t.TempDir())
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, "support-42"); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if _, err := svc.CreateSession(ctx, "support-42"); !errors.Is(err, session.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestAppendMessageValidation(t *testing.T) {
	svc := session.NewService(t.TempDir())
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "validation")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if _, err := svc.AppendMessage(ctx, created.ID, "system", "hi"); !errors.Is(err, session.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, created.ID, conversation.RoleUser, ""); !errors.Is(err, session.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, "missing", conversation.RoleUser, "hi"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAppendMessageBumpsUpdatedAt(t *testing.T) {
	svc := session.NewService(t.TempDir())
	ctx := context.Background()

	created, _ := svc.CreateSession(ctx, "bump")
	msg, err := svc.AppendMessage(ctx, created.ID, conversation.RoleUser, "hello there")
	if err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("expected message timestamp to be assigned")
	}

	got, _ := svc.GetSession(ctx, created.ID)
	if got.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatal("updated_at must be monotonically non-decreasing")
	}
	if len(got.History) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got.History))
	}
}

func TestHistoryDefensiveCopy(t *testing.T) {
	svc := session.NewService(t.TempDir())
	ctx := context.Background()

	created, _ := svc.CreateSession(ctx, "copy")
	svc.AppendMessage(ctx, created.ID, conversation.RoleUser, "original")

	history, err := svc.History(ctx, created.ID)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	history[0].Content = "tampered"

	again, _ := svc.History(ctx, created.ID)
	if again[0].Content != "original" {
		t.Fatal("internal history mutated through returned slice")
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	svc := session.NewService(dir)
	ctx := context.Background()

	created, _ := svc.CreateSession(ctx, "roundtrip")
	svc.AppendMessage(ctx, created.ID, conversation.RoleUser, "how do I reset my password?")
	svc.AppendMessage(ctx, created.ID, conversation.RoleAssistant, "Use the account settings page.")

	path, err := svc.Persist(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("Persist err: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected default path under %s, got %s", dir, path)
	}

	loaded, err := session.NewService(dir).Load(ctx, path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if loaded.ID != created.ID {
		t.Fatalf("session id mismatch: got %s want %s", loaded.ID, created.ID)
	}
	if len(loaded.History) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded.History))
	}
	if loaded.History[0].Role != conversation.RoleUser || loaded.History[0].Content != "how do I reset my password?" {
		t.Fatalf("first message mismatch: %+v", loaded.History[0])
	}
	if loaded.History[1].Role != conversation.RoleAssistant {
		t.Fatalf("second message role mismatch: %s", loaded.History[1].Role)
	}
}

func TestPersistIdempotent(t *testing.T) {
	dir := t.TempDir()
	svc := session.NewService(dir)
	ctx := context.Background()

	created, _ := svc.CreateSession(ctx, "stable")
	svc.AppendMessage(ctx, created.ID, conversation.RoleUser, "ping")

	path, err := svc.Persist(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("Persist err: %v", err)
	}
	first, _ := os.ReadFile(path)

	if _, err := svc.Persist(ctx, created.ID, ""); err != nil {
		t.Fatalf("second Persist err: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Fatal("persisting unchanged state must produce identical bytes")
	}
}

func TestLoadDefaultsFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy_session.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("WriteFile err: %v", err)
	}

	loaded, err := session.NewService(dir).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if loaded.ID != "legacy_session" {
		t.Fatalf("expected id from filename, got %s", loaded.ID)
	}
	if len(loaded.History) != 0 {
		t.Fatalf("expected empty history, got %d", len(loaded.History))
	}
}

func TestLoadCorruptState(t *testing.T) {
	dir := t.TempDir()
	svc := session.NewService(dir)
	ctx := context.Background()

	cases := map[string]string{
		"not_json.json":    `{not json`,
		"bad_role.json":    `{"session_id":"x","history":[{"role":"oracle","content":"hi"}]}`,
		"no_content.json":  `{"session_id":"x","history":[{"role":"user","content":""}]}`,
		"wrong_shape.json": `{"session_id":"x","history":"oops"}`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte(body), 0o644)
		if _, err := svc.Load(ctx, path); !errors.Is(err, session.ErrCorruptState) {
			t.Fatalf("%s: expected ErrCorruptState, got %v", name, err)
		}
	}
}

func TestListSkipsMalformedAndSorts(t *testing.T) {
	dir := t.TempDir()
	svc := session.NewService(dir)
	ctx := context.Background()

	older := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	writeSession := func(name, id string, updated time.Time) {
		body := `{"session_id":"` + id + `","created_at":"` + updated.Format(time.RFC3339) +
			`","updated_at":"` + updated.Format(time.RFC3339) + `","history":[]}`
		os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644)
	}
	writeSession("a.json", "a", older)
	writeSession("b.json", "b", newer)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	summaries, err := svc.List(ctx, dir)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].SessionID != "b" || summaries[1].SessionID != "a" {
		t.Fatalf("expected newest first, got %s then %s", summaries[0].SessionID, summaries[1].SessionID)
	}
}

func TestListMissingDirectory(t *testing.T) {
	svc := session.NewService(filepath.Join(t.TempDir(), "nope"))
	summaries, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected empty listing, got %d", len(summaries))
	}
}

func TestDeleteRemovesPersistedSession(t *testing.T) {
	dir := t.TempDir()
	svc := session.NewService(dir)
	ctx := context.Background()

	created, _ := svc.CreateSession(ctx, "doomed")
	path, _ := svc.Persist(ctx, created.ID, "")

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected persisted file to be removed")
	}
	if _, err := svc.GetSession(ctx, created.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
