package authcore

import (
	"context"
	"testing"
	"time"

	internalaudit "github.com/virelio/authcore/internal/audit"
)

func collectAuditEvents(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, n)
	deadline := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case event := <-sink.Events():
			events = append(events, event)
		case <-deadline:
			t.Fatalf("timed out waiting for audit events, got %d of %d", len(events), n)
		}
	}
	return events
}

func TestEngineEmitsAuditTrail(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)
	sink := NewChannelSink(16)
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    true,
		BufferSize: 16,
	}, sink)
	defer engine.Close()

	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")
	ctx := context.Background()

	signedIn, err := engine.SignIn(ctx, "ada@example.com", "correct-password-1", "")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if _, err := engine.Logout(ctx, signedIn.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	events := collectAuditEvents(t, sink, 2)

	signIn := events[0]
	if signIn.EventType != "sign_in" || !signIn.Success || signIn.UserID != "u1" {
		t.Fatalf("unexpected sign_in event: %+v", signIn)
	}
	if signIn.TokenID == "" {
		t.Fatal("sign_in event must carry the minted tokenID")
	}

	logout := events[1]
	if logout.EventType != "logout" || !logout.Success {
		t.Fatalf("unexpected logout event: %+v", logout)
	}
	if logout.TokenID != signIn.TokenID {
		t.Fatal("logout must name the same token family as sign_in")
	}
}

func TestEngineAuditFailureCarriesError(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)
	sink := NewChannelSink(16)
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    true,
		BufferSize: 16,
	}, sink)
	defer engine.Close()

	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")

	if _, err := engine.SignIn(context.Background(), "ada@example.com", "wrong-password-99", ""); err == nil {
		t.Fatal("expected sign-in failure")
	}

	event := collectAuditEvents(t, sink, 1)[0]
	if event.Success || event.Error == "" {
		t.Fatalf("expected failed event with cause, got %+v", event)
	}
	if event.Metadata["reason"] != "password_mismatch" {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
}

func TestEngineWithoutAuditDispatcher(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)
	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")

	// No dispatcher at all; operations must not mind.
	if _, err := engine.SignIn(context.Background(), "ada@example.com", "correct-password-1", ""); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if engine.AuditDropped() != 0 {
		t.Fatal("no dispatcher, nothing dropped")
	}
}
