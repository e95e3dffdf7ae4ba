package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/alphabot-ai/campusboard/internal/clock"
	"github.com/alphabot-ai/campusboard/internal/config"
	"github.com/alphabot-ai/campusboard/internal/kv"
	"github.com/alphabot-ai/campusboard/internal/store"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("CAMPUSBOARD_CONFIG", "")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")
	return filepath.Join(t.TempDir(), "board.db")
}

// run executes one CLI invocation against the profile at db.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	root, a := newRootCmd()
	defer a.close()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", db}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := run(t, db, args...)
	require.NoError(t, err, "campusboard %s: %s", strings.Join(args, " "), out)
	return out
}

func TestSessionSurvivesInvocations(t *testing.T) {
	db := setupEnv(t)

	assert.Contains(t, mustRun(t, db, "whoami"), "Not logged in")

	mustRun(t, db, "register", "alice", "Alice@X.edu", "-p", "pw1234")
	assert.Contains(t, mustRun(t, db, "whoami"), "alice <alice@x.edu>")

	mustRun(t, db, "logout")
	assert.Contains(t, mustRun(t, db, "whoami"), "Not logged in")

	_, err := run(t, db, "login", "alice", "-p", "wrong")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)

	mustRun(t, db, "login", "alice@x.edu", "-p", "pw1234")
	assert.Contains(t, mustRun(t, db, "whoami"), "alice")
}

func TestRegisterReadsPasswordFromStdin(t *testing.T) {
	db := setupEnv(t)

	root, a := newRootCmd()
	defer a.close()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader("pw1234\n"))
	root.SetArgs([]string{"--db", db, "register", "bob", "bob@x.edu"})
	require.NoError(t, root.Execute())

	mustRun(t, db, "logout")
	mustRun(t, db, "login", "bob", "-p", "pw1234")
}

func TestPostWorkflow(t *testing.T) {
	db := setupEnv(t)

	mustRun(t, db, "register", "alice", "a@x.edu", "-p", "pw1234")
	id := strings.TrimSpace(mustRun(t, db, "post", "create",
		"--title", "Move boxes", "--type", "bounty", "--description", "two hours",
		"--reward", "30", "--tags", "moving, help"))
	require.NotEmpty(t, id)

	feedOut := mustRun(t, db, "feed", "--channel", "bounty", "--tags", "moving")
	assert.Contains(t, feedOut, id)
	assert.Contains(t, feedOut, "$30")

	_, err := run(t, db, "post", "create", "--title", "", "--type", "sale")
	assert.True(t, store.IsValidation(err), "blank title err = %v", err)

	mustRun(t, db, "register", "bob", "b@x.edu", "-p", "pw1234")
	mustRun(t, db, "post", "status", id, "claimed")

	_, err = run(t, db, "post", "edit", id, "--title", "hack")
	assert.ErrorIs(t, err, store.ErrForbidden)

	commentID := strings.TrimSpace(mustRun(t, db, "comment", "add", id, "on", "my", "way"))
	mustRun(t, db, "post", "watch", id)

	assert.Contains(t, mustRun(t, db, "feed", "--view", "claimed"), id)
	assert.Contains(t, mustRun(t, db, "feed", "--view", "watched"), id)

	show := mustRun(t, db, "post", "show", id)
	assert.Contains(t, show, `"claimedByEmail": "b@x.edu"`)
	assert.Contains(t, show, "on my way")

	mustRun(t, db, "login", "alice", "-p", "pw1234")
	_, err = run(t, db, "comment", "edit", id, commentID, "nope")
	assert.ErrorIs(t, err, store.ErrForbidden)

	mustRun(t, db, "post", "edit", id, "--title", "Move boxes (urgent)", "--clear", "reward")
	assert.NotContains(t, mustRun(t, db, "post", "show", id), `"reward"`)
	mustRun(t, db, "post", "status", id, "completed")
	assert.Contains(t, mustRun(t, db, "feed", "--view", "bounties"), "== completed (1)")

	mustRun(t, db, "post", "delete", id)
	_, err = run(t, db, "post", "show", id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFeedFlags(t *testing.T) {
	db := setupEnv(t)

	// A fresh profile starts with the default posts.
	out := mustRun(t, db, "feed")
	assert.NotContains(t, out, "No posts")

	_, err := run(t, db, "feed", "--min", "cheap")
	assert.True(t, store.IsValidation(err))

	_, err = run(t, db, "feed", "--view", "owned")
	assert.ErrorIs(t, err, store.ErrUnauthenticated)

	_, err = run(t, db, "feed", "--view", "nearby")
	assert.Error(t, err)

	assert.Contains(t, mustRun(t, db, "feed", "--q", "zzzz-no-match"), "No posts")
	mustRun(t, db, "feed", "--sort", "distance", "--lat", "43.07", "--lng", "-89.40")
	mustRun(t, db, "feed", "--view", "map")
}

func TestServeStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := config.Default()
	cfg.Port = 0

	clk := clock.NewReal()
	mem := kv.NewMemory()
	ctx := context.Background()
	a := &app{
		cfg:      cfg,
		logger:   zap.NewNop(),
		db:       mem,
		clock:    clk,
		posts:    store.NewPostStore(ctx, mem, clk, nil),
		identity: store.NewIdentityStore(ctx, mem, nil, clk, nil),
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
