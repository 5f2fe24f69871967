package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/virelio/authcore/jwt"
)

// ConfirmEmail validates a confirmation token and marks the account as
// confirmed. Confirming bumps the credential version, which invalidates the
// confirmation token itself along with every other outstanding
// version-bearing token, and the caller gets a fresh signed-in session.
func (e *Engine) ConfirmEmail(ctx context.Context, token, origin string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	payload, err := e.tokens.Parse(jwt.TypeConfirmation, token)
	if err != nil {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmEmail, false, "", "", err, map[string]string{
			"reason": "token_verify",
		})
		return nil, err
	}

	user, err := e.users.FindByID(ctx, payload.UserID)
	if err != nil {
		e.metricInc(MetricConfirmFailure)
		if !errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventConfirmEmail, false, payload.UserID, "", err, map[string]string{
				"reason": "directory",
			})
			return nil, fmt.Errorf("user lookup: %w", err)
		}
		e.emitAudit(ctx, auditEventConfirmEmail, false, payload.UserID, "", ErrInvalidCredentials, map[string]string{
			"reason": "user_lookup",
		})
		return nil, ErrInvalidCredentials
	}
	if user.Credentials.Version != payload.Version {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmEmail, false, user.ID, "", ErrStaleCredentials, nil)
		return nil, ErrStaleCredentials
	}
	if user.Confirmed {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmEmail, false, user.ID, "", ErrEmailAlreadyConfirmed, nil)
		return nil, ErrEmailAlreadyConfirmed
	}

	user.Confirmed = true
	user.Credentials.BumpVersion()
	if err := e.users.Save(ctx, user); err != nil {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmEmail, false, user.ID, "", err, map[string]string{
			"reason": "save",
		})
		return nil, err
	}

	tokenID := newTokenID()
	access, refresh, err := e.generateAuthTokens(user, origin, tokenID)
	if err != nil {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmEmail, false, user.ID, tokenID, err, nil)
		return nil, err
	}

	e.metricInc(MetricConfirmSuccess)
	e.emitAudit(ctx, auditEventConfirmEmail, true, user.ID, tokenID, nil, nil)
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
