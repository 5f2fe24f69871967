package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/virelio/authcore/internal/audit"
)

// User is the account record exchanged with the [UserDirectory]. The engine
// reads it, mutates the embedded [Credentials] and Confirmed flag through
// its operations, and hands it back to Save; everything else about the row
// belongs to the directory.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Confirmed    bool
	Credentials  Credentials
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput is the input for [UserDirectory.Create]. PasswordHash is
// already an Argon2id PHC string; the directory never sees plaintext.
type CreateUserInput struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// UserDirectory is the user-store collaborator. Implementations own
// identifier normalization for storage, username generation, uniqueness
// enforcement, and persistence.
//
// Lookups return [ErrUserNotFound] when no row matches. Create and Save
// return [ErrDuplicateValue] on a uniqueness conflict. Save must guarantee
// single-writer semantics per user row (optimistic version check or
// row lock) so concurrent credential rotations cannot lose an increment.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	Save(ctx context.Context, user *User) error
}

// Mailer is the mail-dispatch collaborator. Calls are fire-and-forget:
// implementations log failures themselves and must not block the request
// path longer than necessary.
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, user *User, token string)
	SendResetPasswordEmail(ctx context.Context, user *User, token string)
}

// NoOpMailer discards all outgoing mail. It is the default when no mailer
// is supplied.
type NoOpMailer struct{}

func (NoOpMailer) SendConfirmationEmail(context.Context, *User, string)  {}
func (NoOpMailer) SendResetPasswordEmail(context.Context, *User, string) {}

// RevocationStore is the durable set of revoked refresh-token families.
// [blacklist.Store] is the stock implementation; hosts may substitute any
// store with read-after-write consistency between Revoke and IsRevoked.
//
// A storage failure must surface as an error: the engine treats "cannot
// answer" as unauthorized, never as "not revoked".
type RevocationStore interface {
	IsRevoked(ctx context.Context, userID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID, tokenID string) error
}

// AuthResult is returned by the operations that establish or renew a
// session. RefreshToken supersedes whatever refresh token string the client
// held before.
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// Message is the opaque success response for operations that deliberately
// reveal nothing else, such as sign-up and logout.
type Message struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// SignUpInput carries the sign-up fields. Password1 and Password2 must be
// equal; the check runs before any directory call.
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password1 string
	Password2 string
}

// AuditEvent is the structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
