// Package jwt issues and verifies the four token kinds used by the auth
// engine: access, confirmation, reset-password, and refresh. Each kind signs
// with its own HS256 secret and time-to-live, so a token minted for one kind
// can never verify as another.
//
// # Claims layout
//
// Every token carries the registered issuer, audience, issued-at, and expiry
// claims plus the kind-specific payload fields:
//
//	uid — subject user ID (all kinds)
//	ver — credentials version (confirmation, reset-password, refresh)
//	tid — refresh-token family ID (refresh only)
//
// A missing required field is reported as [ErrMalformedPayload], not as a
// zero value: version 0 is a legitimate credentials version.
//
// # Architecture boundaries
//
// This package owns cryptographic generation and verification only. It does
// NOT consult revocation state or compare the embedded version against live
// credentials. Those checks belong to the Engine.
//
// # What this package must NOT do
//
//   - Import any other authcore package.
//   - Fall back to another kind's secret when verification fails.
//   - Persist tokens or payloads.
package jwt
