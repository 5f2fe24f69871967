package authcore

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine is used before Build
	// completed or with a missing collaborator.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidCredentials is the generic authentication failure. It covers
	// unknown identifier and wrong password without distinguishing them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordMismatch is returned when the two password fields of a
	// sign-up or reset request differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrWrongPassword is returned when the current password supplied to a
	// password change does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrPasswordReuse is returned when a new password equals the current one.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrInvalidEmail is returned for a syntactically invalid email address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidUsername is returned for a syntactically invalid username.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrUnconfirmedAccount is returned when sign-in succeeds on credentials
	// but the account email was never confirmed. A fresh confirmation email
	// is dispatched before this error is returned.
	ErrUnconfirmedAccount = errors.New("please confirm your email, a new email has been sent")
	// ErrEmailAlreadyConfirmed is returned when a confirmation token is
	// presented for an already-confirmed account.
	ErrEmailAlreadyConfirmed = errors.New("email already confirmed")
	// ErrTokenRevoked is returned when a refresh token's family is on the
	// blacklist.
	ErrTokenRevoked = errors.New("token is invalid")
	// ErrStaleCredentials is returned when a token's embedded version no
	// longer equals the live credentials version.
	ErrStaleCredentials = errors.New("credentials version mismatch")
	// ErrUserNotFound is surfaced by [UserDirectory] lookups where revealing
	// existence is acceptable. Authentication paths collapse it into
	// [ErrInvalidCredentials].
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateValue is surfaced by [UserDirectory] writes that violate
	// email or username uniqueness.
	ErrDuplicateValue = errors.New("duplicated value in database")
	// ErrRevocationUnavailable is returned when the revocation store cannot
	// answer. A refresh that cannot confirm non-revocation is unauthorized,
	// and a logout that cannot record revocation has failed.
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
)
