package authcore

import "time"

// nowUnix is swapped out in tests.
var nowUnix = func() int64 { return time.Now().Unix() }

// Credentials is the per-user password-version record embedded in [User].
// It is owned exclusively by its User and mutated only through
// [Credentials.UpdatePassword] and [Credentials.BumpVersion]; both require
// the owning row to be held under the directory's single-writer guarantee.
//
// Version starts at 0 and increases by exactly 1 on every mutation. Tokens
// embed the version at issue time, so each increment retroactively kills
// every outstanding version-carrying token without naming any of them.
type Credentials struct {
	Version           uint32 `json:"version"`
	LastPassword      string `json:"lastPassword"`
	PasswordUpdatedAt int64  `json:"passwordUpdatedAt"`
	UpdatedAt         int64  `json:"updatedAt"`
}

// UpdatePassword records a password rotation: the outgoing hash becomes
// LastPassword, the version advances, and both timestamps refresh. The
// caller replaces User.PasswordHash with the new hash itself.
func (c *Credentials) UpdatePassword(oldHash string) {
	c.Version++
	c.LastPassword = oldHash
	now := nowUnix()
	c.PasswordUpdatedAt = now
	c.UpdatedAt = now
}

// BumpVersion advances the version without touching password fields. Used
// to consume one-shot confirmation and reset tokens.
func (c *Credentials) BumpVersion() {
	c.Version++
	c.UpdatedAt = nowUnix()
}
