package kv

import (
	"context"
	"os"
	"testing"
)

func setupTestDB(t *testing.T) (*SQLite, string, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "campusboard-kv-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	s, err := NewSQLite(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
		os.Remove(tmpFile.Name())
	}

	return s, tmpFile.Name(), cleanup
}

func TestSQLiteSetGet(t *testing.T) {
	s, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "posts"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v; want absent", ok, err)
	}

	if err := s.Set(ctx, "posts", `[{"id":"1"}]`); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	got, ok, err := s.Get(ctx, "posts")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to be present")
	}
	if got != `[{"id":"1"}]` {
		t.Errorf("value = %q, want %q", got, `[{"id":"1"}]`)
	}

	// Overwrite replaces the whole value
	if err := s.Set(ctx, "posts", `[]`); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}
	got, _, _ = s.Get(ctx, "posts")
	if got != `[]` {
		t.Errorf("value after overwrite = %q, want %q", got, `[]`)
	}
}

func TestSQLiteRemove(t *testing.T) {
	s, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if err := s.Set(ctx, "current_session", `{"name":"alice"}`); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := s.Remove(ctx, "current_session"); err != nil {
		t.Fatalf("failed to remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "current_session"); ok {
		t.Error("key should be gone after Remove")
	}

	// Removing a missing key is fine
	if err := s.Remove(ctx, "current_session"); err != nil {
		t.Errorf("Remove of missing key returned %v", err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	s, path, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := s.Set(ctx, "users", `[{"username":"alice"}]`); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	s.Close()

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "users")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok %v, err %v", ok, err)
	}
	if got != `[{"username":"alice"}]` {
		t.Errorf("value = %q", got)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	m.Close()

	if err := m.Set(ctx, "k", "v2"); err != ErrClosed {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
	if _, _, err := m.Get(ctx, "k"); err != ErrClosed {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
}
