package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/virelio/authcore/jwt"
)

// ForgotPassword mints a reset-password token and mails it to the account
// owner. The response is identical whether or not the address is known, so
// the endpoint cannot be used to probe for registered emails.
func (e *Engine) ForgotPassword(ctx context.Context, email, origin string) (Message, error) {
	if !e.ready() {
		return Message{}, ErrEngineNotReady
	}
	if !validEmail(email) {
		return Message{}, ErrInvalidEmail
	}

	msg := newMessage("If the address is registered, a reset email has been sent")

	user, err := e.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordResetRequest, true, "", "", nil, map[string]string{
				"known_account": "false",
			})
			return msg, nil
		}
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", "", err, nil)
		return Message{}, err
	}

	token, err := e.tokens.Generate(jwt.TypeResetPassword, jwt.Payload{
		UserID:  user.ID,
		Version: user.Credentials.Version,
	}, origin)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, user.ID, "", err, nil)
		return Message{}, err
	}
	e.mailer.SendResetPasswordEmail(ctx, user, token)

	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, user.ID, "", nil, nil)
	return msg, nil
}

// ResetPassword consumes a reset token and installs a new password. The
// rotation bumps the credential version, so the reset token cannot be
// replayed and every outstanding refresh and confirmation token dies with
// the old password.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) (Message, error) {
	if !e.ready() {
		return Message{}, ErrEngineNotReady
	}
	if newPassword != confirmPassword {
		return Message{}, ErrPasswordMismatch
	}

	payload, err := e.tokens.Parse(jwt.TypeResetPassword, token)
	if err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", "", err, map[string]string{
			"reason": "token_verify",
		})
		return Message{}, err
	}

	user, err := e.users.FindByID(ctx, payload.UserID)
	if err != nil {
		e.metricInc(MetricResetFailure)
		if !errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordResetConfirm, false, payload.UserID, "", err, map[string]string{
				"reason": "directory",
			})
			return Message{}, fmt.Errorf("user lookup: %w", err)
		}
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, payload.UserID, "", ErrInvalidCredentials, map[string]string{
			"reason": "user_lookup",
		})
		return Message{}, ErrInvalidCredentials
	}
	if user.Credentials.Version != payload.Version {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.ID, "", ErrStaleCredentials, nil)
		return Message{}, ErrStaleCredentials
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.ID, "", err, nil)
		return Message{}, err
	}

	user.Credentials.UpdatePassword(user.PasswordHash)
	user.PasswordHash = hash
	if err := e.users.Save(ctx, user); err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.ID, "", err, map[string]string{
			"reason": "save",
		})
		return Message{}, err
	}

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetConfirm, true, user.ID, "", nil, nil)
	return newMessage("Password reset successful"), nil
}

// ChangePassword rotates the password of a signed-in user. The current
// password must verify, the new one may not equal it, and the rotation
// revokes every outstanding refresh token by bumping the credential
// version. The caller receives a fresh session under the new version.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword, origin string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if newPassword != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		if !errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", err, map[string]string{
				"reason": "directory",
			})
			return nil, fmt.Errorf("user lookup: %w", err)
		}
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", ErrInvalidCredentials, map[string]string{
			"reason": "user_lookup",
		})
		return nil, ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, "", err, nil)
		return nil, err
	}
	if !ok {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, "", ErrWrongPassword, nil)
		return nil, ErrWrongPassword
	}

	same, err := e.hasher.Verify(newPassword, user.PasswordHash)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, "", err, nil)
		return nil, err
	}
	if same {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, "", ErrPasswordReuse, nil)
		return nil, ErrPasswordReuse
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, "", err, nil)
		return nil, err
	}

	user.Credentials.UpdatePassword(user.PasswordHash)
	user.PasswordHash = hash
	if err := e.users.Save(ctx, user); err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, "", err, map[string]string{
			"reason": "save",
		})
		return nil, err
	}

	tokenID := newTokenID()
	access, refresh, err := e.generateAuthTokens(user, origin, tokenID)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, tokenID, err, nil)
		return nil, err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChange, true, user.ID, tokenID, nil, nil)
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
