package authcore

import "testing"

func TestCredentialsUpdatePassword(t *testing.T) {
	restore := nowUnix
	defer func() { nowUnix = restore }()
	nowUnix = func() int64 { return 1700000000 }

	creds := Credentials{Version: 2, LastPassword: "older-hash"}
	creds.UpdatePassword("current-hash")

	if creds.Version != 3 {
		t.Fatalf("expected version 3, got %d", creds.Version)
	}
	if creds.LastPassword != "current-hash" {
		t.Fatalf("expected outgoing hash to be recorded, got %q", creds.LastPassword)
	}
	if creds.PasswordUpdatedAt != 1700000000 || creds.UpdatedAt != 1700000000 {
		t.Fatalf("expected both timestamps stamped, got %d and %d", creds.PasswordUpdatedAt, creds.UpdatedAt)
	}
}

func TestCredentialsBumpVersion(t *testing.T) {
	restore := nowUnix
	defer func() { nowUnix = restore }()
	nowUnix = func() int64 { return 1700000500 }

	creds := Credentials{Version: 1, LastPassword: "old", PasswordUpdatedAt: 42}
	creds.BumpVersion()

	if creds.Version != 2 {
		t.Fatalf("expected version 2, got %d", creds.Version)
	}
	if creds.LastPassword != "old" || creds.PasswordUpdatedAt != 42 {
		t.Fatal("expected password fields untouched")
	}
	if creds.UpdatedAt != 1700000500 {
		t.Fatalf("expected UpdatedAt stamped, got %d", creds.UpdatedAt)
	}
}
