package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/virelio/authcore/jwt"
)

func TestLogoutBlocksRefresh(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)
	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")
	ctx := context.Background()

	signedIn, err := engine.SignIn(ctx, "ada@example.com", "correct-password-1", "")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	rotated, err := engine.Refresh(ctx, signedIn.RefreshToken, "")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	msg, err := engine.Logout(ctx, rotated.RefreshToken)
	if err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if msg.Message != "Logout successful" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	// The whole family dies, including the pre-rotation token.
	if _, err := engine.Refresh(ctx, rotated.RefreshToken, ""); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
	if _, err := engine.Refresh(ctx, signedIn.RefreshToken, ""); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected pre-rotation token revoked too, got %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)
	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")
	ctx := context.Background()

	signedIn, err := engine.SignIn(ctx, "ada@example.com", "correct-password-1", "")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if _, err := engine.Logout(ctx, signedIn.RefreshToken); err != nil {
		t.Fatalf("first Logout failed: %v", err)
	}
	if _, err := engine.Logout(ctx, signedIn.RefreshToken); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
}

func TestLogoutAcceptsExpiredToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)

	// A manager whose refresh tokens are already expired the moment they
	// are minted.
	cfg := testTokensConfig()
	cfg.Refresh.TTL = time.Nanosecond
	tokens, err := jwt.NewManager(cfg)
	if err != nil {
		t.Fatalf("jwt.NewManager failed: %v", err)
	}
	engine.tokens = tokens

	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")
	ctx := context.Background()

	signedIn, err := engine.SignIn(ctx, "ada@example.com", "correct-password-1", "")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := engine.Refresh(ctx, signedIn.RefreshToken, ""); !errors.Is(err, jwt.ErrExpired) {
		t.Fatalf("expected refresh to reject the expired token, got %v", err)
	}
	if _, err := engine.Logout(ctx, signedIn.RefreshToken); err != nil {
		t.Fatalf("Logout of expired token failed: %v", err)
	}
}

func TestLogoutRejectsForgery(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, newFakeDirectory(), nil)
	ctx := context.Background()

	if _, err := engine.Logout(ctx, "definitely.not.signed"); err == nil {
		t.Fatal("expected an error for garbage input")
	}

	// A token signed with a different refresh secret must not revoke
	// anything.
	otherCfg := testTokensConfig()
	otherCfg.Refresh.Secret = []byte("attacker-chosen-secret-000000001")
	other, err := jwt.NewManager(otherCfg)
	if err != nil {
		t.Fatalf("jwt.NewManager failed: %v", err)
	}
	forged, err := other.Generate(jwt.TypeRefresh, jwt.Payload{UserID: "u1", TokenID: "tid-1"}, "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := engine.Logout(ctx, forged); !errors.Is(err, jwt.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for forged token, got %v", err)
	}
}

func TestLogoutFailsWhenStoreDown(t *testing.T) {
	mr, rdb := newTestRedis(t)

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)
	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")
	ctx := context.Background()

	signedIn, err := engine.SignIn(ctx, "ada@example.com", "correct-password-1", "")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	mr.Close()

	_, err = engine.Logout(ctx, signedIn.RefreshToken)
	if !errors.Is(err, ErrRevocationUnavailable) {
		t.Fatalf("expected ErrRevocationUnavailable, got %v", err)
	}
}
