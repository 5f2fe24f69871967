package authcore

import (
	"context"
	"fmt"

	"github.com/virelio/authcore/jwt"
)

// Logout blacklists the session family of the presented refresh token.
// Expired tokens are accepted as long as the signature checks out, so a
// client that comes back after a long sleep can still terminate its
// session explicitly. Repeated logouts with the same token succeed.
func (e *Engine) Logout(ctx context.Context, refreshToken string) (Message, error) {
	if !e.ready() {
		return Message{}, ErrEngineNotReady
	}

	payload, err := e.tokens.ParseAllowExpired(jwt.TypeRefresh, refreshToken)
	if err != nil {
		e.emitAudit(ctx, auditEventLogout, false, "", "", err, map[string]string{
			"reason": "token_verify",
		})
		return Message{}, err
	}

	if err := e.revocations.Revoke(ctx, payload.UserID, payload.TokenID); err != nil {
		e.emitAudit(ctx, auditEventLogout, false, payload.UserID, payload.TokenID, err, map[string]string{
			"reason": "revocation_store",
		})
		return Message{}, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, payload.UserID, payload.TokenID, nil, nil)
	return newMessage("Logout successful"), nil
}
