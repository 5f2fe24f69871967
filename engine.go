package authcore

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/virelio/authcore/internal/audit"
	"github.com/virelio/authcore/jwt"
	"github.com/virelio/authcore/password"
)

const (
	auditEventSignUp               = "sign_up"
	auditEventSignIn               = "sign_in"
	auditEventRefresh              = "refresh"
	auditEventLogout               = "logout"
	auditEventConfirmEmail         = "confirm_email"
	auditEventPasswordResetRequest = "password_reset_request"
	auditEventPasswordResetConfirm = "password_reset_confirm"
	auditEventPasswordChange       = "password_change"
)

// usernameRegexp accepts lowercase slugs: alphanumeric runs separated by
// single dots, dashes, or underscores.
var usernameRegexp = regexp.MustCompile(`^[a-z\d]+(?:[._-][a-z\d]+)*$`)

// Engine orchestrates the token lifecycle against the collaborator
// interfaces. Build one through [New]; a zero Engine is not usable.
//
// All operations are synchronous and safe for concurrent use. The only
// suspension points are the [UserDirectory] and [RevocationStore] calls.
type Engine struct {
	tokens      *jwt.Manager
	hasher      *password.Hasher
	users       UserDirectory
	mailer      Mailer
	revocations RevocationStore
	audit       *internalaudit.Dispatcher
	metrics     *Metrics
	now         func() time.Time
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// MetricsSnapshot returns a copy of all engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) ready() bool {
	return e != nil && e.tokens != nil && e.users != nil && e.revocations != nil
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, tokenID string, cause error, metadata map[string]string) {
	if e.audit == nil {
		return
	}
	event := internalaudit.Event{
		Timestamp: e.now(),
		EventType: eventType,
		UserID:    userID,
		TokenID:   tokenID,
		Success:   success,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.audit.Emit(ctx, event)
}

// ValidateAccess verifies an access token and returns the subject user ID.
// Access tokens carry no credentials version; their only revocation lever
// is their short TTL.
func (e *Engine) ValidateAccess(_ context.Context, accessToken string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	payload, err := e.tokens.Parse(jwt.TypeAccess, accessToken)
	if err != nil {
		return "", err
	}
	return payload.UserID, nil
}

// generateAuthTokens mints the access/refresh pair for a session family.
func (e *Engine) generateAuthTokens(user *User, origin, tokenID string) (string, string, error) {
	access, err := e.tokens.Generate(jwt.TypeAccess, jwt.Payload{UserID: user.ID}, origin)
	if err != nil {
		return "", "", err
	}
	refresh, err := e.tokens.Generate(jwt.TypeRefresh, jwt.Payload{
		UserID:  user.ID,
		Version: user.Credentials.Version,
		TokenID: tokenID,
	}, origin)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (e *Engine) confirmationToken(user *User, origin string) (string, error) {
	return e.tokens.Generate(jwt.TypeConfirmation, jwt.Payload{
		UserID:  user.ID,
		Version: user.Credentials.Version,
	}, origin)
}

// userByEmailOrUsername validates the identifier shape and dispatches the
// lookup. Both not-found and bad-password collapse to ErrInvalidCredentials
// at the call sites.
func (e *Engine) userByEmailOrUsername(ctx context.Context, identifier string) (*User, error) {
	if strings.Contains(identifier, "@") {
		if !validEmail(identifier) {
			return nil, ErrInvalidEmail
		}
		return e.users.FindByEmail(ctx, strings.ToLower(identifier))
	}

	if len(identifier) < 3 || len(identifier) > 106 || !usernameRegexp.MatchString(identifier) {
		return nil, ErrInvalidUsername
	}
	return e.users.FindByUsername(ctx, strings.ToLower(identifier))
}

func validEmail(address string) bool {
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}

func newTokenID() string {
	return uuid.NewString()
}

func newMessage(text string) Message {
	return Message{ID: uuid.NewString(), Message: text}
}
