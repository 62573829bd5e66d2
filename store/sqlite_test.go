package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aganium/agenium-go/core"
	"github.com/Aganium/agenium-go/session"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIdentityRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LoadIdentity(ctx, "alice")
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}

	id := Identity{Name: "alice", PublicKeyB64: "pk", PrivateKeyPEM: "pem"}
	if err := s.SaveIdentity(ctx, id); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}

	got, err := s.LoadIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if got.PublicKeyB64 != "pk" || got.PrivateKeyPEM != "pem" {
		t.Fatalf("loaded identity = %+v", got)
	}

	// Saving again replaces the key material.
	id.PublicKeyB64 = "pk2"
	if err := s.SaveIdentity(ctx, id); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}
	got, err = s.LoadIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if got.PublicKeyB64 != "pk2" {
		t.Fatalf("identity not replaced: %+v", got)
	}
}

func TestSessionJournal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	sess := session.Session{
		ID:        "sess-1",
		Local:     core.AgentID{Name: "alice"},
		Remote:    core.AgentID{Name: "bob"},
		State:     session.Closed,
		CreatedAt: now.Add(-time.Minute),
		UpdatedAt: now,
		Metadata:  map[string]any{"endpoint": "wss://bob.example"},
	}
	if err := s.JournalSession(ctx, sess); err != nil {
		t.Fatalf("JournalSession: %v", err)
	}

	entries, err := s.Journal(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ID != "sess-1" || got.RemoteName != "bob" || got.State != "closed" {
		t.Fatalf("entry = %+v", got)
	}
	if got.Metadata["endpoint"] != "wss://bob.example" {
		t.Fatalf("metadata = %v", got.Metadata)
	}

	entries, err = s.Journal(ctx, "nobody", 10)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
