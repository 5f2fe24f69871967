package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType selects which secret, TTL, and payload shape a token uses.
type TokenType string

const (
	// TypeAccess is the short-lived API authorization token.
	TypeAccess TokenType = "access"
	// TypeConfirmation is the one-time email confirmation token.
	TypeConfirmation TokenType = "confirmation"
	// TypeResetPassword is the one-time password reset token.
	TypeResetPassword TokenType = "resetPassword"
	// TypeRefresh is the long-lived session renewal token.
	TypeRefresh TokenType = "refresh"
)

var (
	// ErrInvalidSignature is returned when a token fails cryptographic
	// verification, names an unexpected algorithm, or was signed for a
	// different token type.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired is returned when a token's expiry has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrMalformedPayload is returned when a token verifies but is missing a
	// claim its type requires, or is not a parseable JWT at all.
	ErrMalformedPayload = errors.New("token payload malformed")
	// ErrUnknownType is returned when a [TokenType] outside the four
	// supported kinds is supplied.
	ErrUnknownType = errors.New("unknown token type")
)

// TokenConfig holds the secret and time-to-live for one token type.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Config configures a [Manager]. All four token types must carry a non-empty
// secret and positive TTL, and the secrets must be pairwise distinct so that
// type isolation holds cryptographically.
type Config struct {
	Access        TokenConfig
	Confirmation  TokenConfig
	ResetPassword TokenConfig
	Refresh       TokenConfig

	// Issuer is set as the iss claim on every token and is the audience
	// fallback when no per-request origin is supplied.
	Issuer string

	// Leeway tolerates small clock skew during expiry validation. Zero
	// disables it; values above two minutes are rejected.
	Leeway time.Duration
}

// Payload is the type-specific content of a token. Version is meaningful for
// confirmation, reset-password, and refresh tokens; TokenID only for refresh.
type Payload struct {
	UserID  string
	Version uint32
	TokenID string
}

// Manager mints and verifies tokens. It is the only component aware of the
// token type to secret/TTL mapping.
type Manager struct {
	config Config
	now    func() time.Time
}

type wireClaims struct {
	UserID  string  `json:"uid"`
	Version *uint32 `json:"ver,omitempty"`
	TokenID string  `json:"tid,omitempty"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a ready [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	kinds := map[TokenType]TokenConfig{
		TypeAccess:        cfg.Access,
		TypeConfirmation:  cfg.Confirmation,
		TypeResetPassword: cfg.ResetPassword,
		TypeRefresh:       cfg.Refresh,
	}
	seen := map[string]TokenType{}
	for typ, tc := range kinds {
		if len(tc.Secret) == 0 {
			return nil, fmt.Errorf("%s token requires a secret", typ)
		}
		if tc.TTL <= 0 {
			return nil, fmt.Errorf("%s token requires a positive TTL", typ)
		}
		if other, dup := seen[string(tc.Secret)]; dup {
			return nil, fmt.Errorf("%s and %s tokens share a secret", other, typ)
		}
		seen[string(tc.Secret)] = typ
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

func (m *Manager) typeConfig(typ TokenType) (TokenConfig, error) {
	switch typ {
	case TypeAccess:
		return m.config.Access, nil
	case TypeConfirmation:
		return m.config.Confirmation, nil
	case TypeResetPassword:
		return m.config.ResetPassword, nil
	case TypeRefresh:
		return m.config.Refresh, nil
	default:
		return TokenConfig{}, ErrUnknownType
	}
}

// Generate mints a signed token of the given type. audience overrides the
// configured issuer as the aud claim when non-empty; refresh tokens require
// payload.TokenID and version-carrying types embed payload.Version.
func (m *Manager) Generate(typ TokenType, payload Payload, audience string) (string, error) {
	tc, err := m.typeConfig(typ)
	if err != nil {
		return "", err
	}
	if payload.UserID == "" {
		return "", errors.New("payload user ID required")
	}
	if typ == TypeRefresh && payload.TokenID == "" {
		return "", errors.New("refresh payload requires a token ID")
	}

	if audience == "" {
		audience = m.config.Issuer
	}
	now := m.now()
	claims := wireClaims{
		UserID: payload.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{audience},
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.TTL)),
		},
	}
	if typ != TypeAccess {
		version := payload.Version
		claims.Version = &version
	}
	if typ == TypeRefresh {
		claims.TokenID = payload.TokenID
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.Secret)
}

// Parse verifies token against the given type's secret and returns its
// payload. Failures map to [ErrInvalidSignature], [ErrExpired], or
// [ErrMalformedPayload]; no other type's secret is ever consulted.
func (m *Manager) Parse(typ TokenType, token string) (Payload, error) {
	return m.parse(typ, token, false)
}

// ParseAllowExpired behaves like [Parse] but accepts a token whose expiry has
// already elapsed, provided the signature and payload shape are valid. It
// exists so logout can blacklist a refresh-token family the client still
// holds after natural expiry.
func (m *Manager) ParseAllowExpired(typ TokenType, token string) (Payload, error) {
	payload, err := m.parse(typ, token, false)
	if errors.Is(err, ErrExpired) {
		return m.parse(typ, token, true)
	}
	return payload, err
}

func (m *Manager) parse(typ TokenType, token string, allowExpired bool) (Payload, error) {
	tc, err := m.typeConfig(typ)
	if err != nil {
		return Payload{}, err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if allowExpired {
		// Signature and shape still verify below; only time claims are waived.
		options = append(options, jwt.WithoutClaimsValidation())
	}

	claims := &wireClaims{}
	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return tc.Secret, nil
	})
	if err != nil {
		return Payload{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Payload{}, ErrInvalidSignature
	}
	if allowExpired && claims.Issuer != m.config.Issuer {
		return Payload{}, ErrInvalidSignature
	}

	if err := validateShape(typ, claims); err != nil {
		return Payload{}, err
	}

	payload := Payload{UserID: claims.UserID, TokenID: claims.TokenID}
	if claims.Version != nil {
		payload.Version = *claims.Version
	}
	return payload, nil
}

func validateShape(typ TokenType, claims *wireClaims) error {
	if claims.UserID == "" {
		return ErrMalformedPayload
	}
	switch typ {
	case TypeConfirmation, TypeResetPassword:
		if claims.Version == nil {
			return ErrMalformedPayload
		}
	case TypeRefresh:
		if claims.Version == nil || claims.TokenID == "" {
			return ErrMalformedPayload
		}
	}
	return nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedPayload
	default:
		// Signature mismatch, wrong algorithm, wrong issuer, future iat:
		// all collapse to one failure so callers cannot probe secrets.
		return ErrInvalidSignature
	}
}
