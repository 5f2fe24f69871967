package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/virelio/authcore/jwt"
)

// Refresh rotates a refresh token into a fresh access/refresh pair. The new
// refresh token keeps the input's tokenID, preserving the session family;
// the old token string stays cryptographically valid until its own expiry,
// so the family lives or dies as a unit through the blacklist.
//
// The revocation check fails closed: when the store cannot answer, the
// rotation is rejected with [ErrRevocationUnavailable].
func (e *Engine) Refresh(ctx context.Context, refreshToken, origin string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	payload, err := e.tokens.Parse(jwt.TypeRefresh, refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, "", "", err, map[string]string{
			"reason": "token_verify",
		})
		return nil, err
	}

	revoked, err := e.revocations.IsRevoked(ctx, payload.UserID, payload.TokenID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, payload.UserID, payload.TokenID, err, map[string]string{
			"reason": "revocation_store",
		})
		return nil, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if revoked {
		e.metricInc(MetricRefreshRevoked)
		e.emitAudit(ctx, auditEventRefresh, false, payload.UserID, payload.TokenID, ErrTokenRevoked, nil)
		return nil, ErrTokenRevoked
	}

	user, err := e.users.FindByID(ctx, payload.UserID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		if !errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventRefresh, false, payload.UserID, payload.TokenID, err, map[string]string{
				"reason": "directory",
			})
			return nil, fmt.Errorf("user lookup: %w", err)
		}
		e.emitAudit(ctx, auditEventRefresh, false, payload.UserID, payload.TokenID, ErrInvalidCredentials, map[string]string{
			"reason": "user_lookup",
		})
		return nil, ErrInvalidCredentials
	}
	if user.Credentials.Version != payload.Version {
		e.metricInc(MetricRefreshStale)
		e.emitAudit(ctx, auditEventRefresh, false, user.ID, payload.TokenID, ErrStaleCredentials, nil)
		return nil, ErrStaleCredentials
	}

	access, refresh, err := e.generateAuthTokens(user, origin, payload.TokenID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, user.ID, payload.TokenID, err, nil)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefresh, true, user.ID, payload.TokenID, nil, nil)
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
