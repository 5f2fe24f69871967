package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PasswordChangedError is returned when a sign-in fails against the current
// hash but matches the previous one. It deliberately tells the holder of
// the old password how long ago it changed, as a recovery nudge for the
// legitimate owner; every other failure stays behind
// [ErrInvalidCredentials].
type PasswordChangedError struct {
	// Ago is the time elapsed since the rotation.
	Ago time.Duration
}

const passwordChangedPrefix = "You changed your password "

// Months are bucketed as 30 days, matching the coarse calendar arithmetic
// of the rest of the recency message.
const monthish = 30 * 24 * time.Hour

func (e *PasswordChangedError) Error() string {
	if months := int(e.Ago / monthish); months > 0 {
		return passwordChangedPrefix + fmt.Sprintf("%d %s ago", months, plural("month", months))
	}
	if days := int(e.Ago / (24 * time.Hour)); days > 0 {
		return passwordChangedPrefix + fmt.Sprintf("%d %s ago", days, plural("day", days))
	}
	if hours := int(e.Ago / time.Hour); hours > 0 {
		return passwordChangedPrefix + fmt.Sprintf("%d %s ago", hours, plural("hour", hours))
	}
	return passwordChangedPrefix + "recently"
}

func (e *PasswordChangedError) Unwrap() error { return ErrInvalidCredentials }

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// SignIn authenticates by email or username and mints a fresh token pair
// with a new refresh family. Unknown identifier and wrong password are not
// distinguished. An unconfirmed account with correct credentials gets a
// confirmation resend and fails with [ErrUnconfirmedAccount].
func (e *Engine) SignIn(ctx context.Context, emailOrUsername, passwd, origin string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	user, err := e.userByEmailOrUsername(ctx, emailOrUsername)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidUsername):
			e.emitAudit(ctx, auditEventSignIn, false, "", "", err, nil)
			return nil, err
		case errors.Is(err, ErrUserNotFound):
			// Only absence collapses into the generic failure; a directory
			// outage is not an authentication verdict.
			e.emitAudit(ctx, auditEventSignIn, false, "", "", ErrInvalidCredentials, map[string]string{
				"reason": "user_not_found",
			})
			return nil, ErrInvalidCredentials
		default:
			e.emitAudit(ctx, auditEventSignIn, false, "", "", err, map[string]string{
				"reason": "directory",
			})
			return nil, fmt.Errorf("user lookup: %w", err)
		}
	}

	ok, err := e.hasher.Verify(passwd, user.PasswordHash)
	if err != nil || !ok {
		lastErr := e.checkLastPassword(&user.Credentials, passwd)
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignIn, false, user.ID, "", lastErr, map[string]string{
			"reason": "password_mismatch",
		})
		return nil, lastErr
	}

	if !user.Confirmed {
		if token, terr := e.confirmationToken(user, origin); terr == nil {
			e.mailer.SendConfirmationEmail(ctx, user, token)
		}
		e.metricInc(MetricSignInUnconfirmed)
		e.emitAudit(ctx, auditEventSignIn, false, user.ID, "", ErrUnconfirmedAccount, nil)
		return nil, ErrUnconfirmedAccount
	}

	tokenID := newTokenID()
	access, refresh, err := e.generateAuthTokens(user, origin, tokenID)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignIn, false, user.ID, tokenID, err, nil)
		return nil, err
	}

	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, auditEventSignIn, true, user.ID, tokenID, nil, nil)
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// checkLastPassword decides what a failed password attempt learns. Matching
// the previous hash earns the recency disclosure; anything else is the
// generic failure.
func (e *Engine) checkLastPassword(creds *Credentials, passwd string) error {
	if creds.LastPassword == "" {
		return ErrInvalidCredentials
	}
	ok, err := e.hasher.Verify(passwd, creds.LastPassword)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	return &PasswordChangedError{
		Ago: e.now().Sub(time.Unix(creds.PasswordUpdatedAt, 0)),
	}
}
