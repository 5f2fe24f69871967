package authcore

import (
	"context"
	"strings"
)

// SignUp registers a new account and dispatches a confirmation email. The
// password-pair check runs before any directory call; the returned message
// is deliberately opaque so registration reveals nothing a uniqueness
// conflict does not already reveal.
func (e *Engine) SignUp(ctx context.Context, input SignUpInput, origin string) (Message, error) {
	if !e.ready() {
		return Message{}, ErrEngineNotReady
	}
	if input.Password1 != input.Password2 {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUp, false, "", "", ErrPasswordMismatch, nil)
		return Message{}, ErrPasswordMismatch
	}
	if !validEmail(input.Email) {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUp, false, "", "", ErrInvalidEmail, nil)
		return Message{}, ErrInvalidEmail
	}

	hash, err := e.hasher.Hash(input.Password1)
	if err != nil {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUp, false, "", "", err, nil)
		return Message{}, err
	}

	user, err := e.users.Create(ctx, CreateUserInput{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
	})
	if err != nil {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUp, false, "", "", err, map[string]string{
			"reason": "directory_create",
		})
		return Message{}, err
	}

	token, err := e.confirmationToken(user, origin)
	if err != nil {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUp, false, user.ID, "", err, nil)
		return Message{}, err
	}
	e.mailer.SendConfirmationEmail(ctx, user, token)

	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditEventSignUp, true, user.ID, "", nil, nil)
	return newMessage("Registration successful"), nil
}
