// Package blacklist provides the Redis-backed revocation store for refresh
// token families.
//
// # Key layout
//
// One key per revoked family, written once and never updated:
//
//	<prefix>:<userID>:<tokenID> -> revocation unix timestamp
//
// Records expire with the configured retention window. Retention should be
// at least the refresh-token TTL: once every JWT naming a tokenID has
// expired, the record no longer protects anything.
//
// # Architecture boundaries
//
// This package owns revocation persistence only. Deciding when to revoke,
// and what a revoked family means, belongs to the Engine.
//
// # What this package must NOT do
//
//   - Treat a storage failure as "not revoked".
//   - Import any other authcore package.
package blacklist
