// Package authcore is an embeddable authentication engine built around JWT
// issuance, verification, rotation, and revocation, paired with a
// credential-versioning scheme that retroactively invalidates outstanding
// tokens when a password changes.
//
// # Model
//
// Four token kinds, each with an independent secret and TTL: access,
// confirmation, reset-password, and refresh. Confirmation, reset, and
// refresh tokens embed the user's credentials version; a version mismatch
// at verification time means the credentials rotated since issue and the
// token is dead, with no need to enumerate issued tokens. Refresh tokens
// additionally carry a random family tokenID; logout writes the
// (userID, tokenID) pair to a Redis blacklist, killing the family even
// though its signatures remain valid until natural expiry.
//
// # Integration
//
// Host applications implement [UserDirectory] (lookup, creation,
// persistence) and optionally [Mailer] (confirmation and reset emails),
// then assemble an [Engine] through the [Builder]:
//
//	engine, err := authcore.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithUserDirectory(directory).
//		WithMailer(mailer).
//		Build()
//
// HTTP routing, request validation, cookie handling, and the relational
// user store itself are the host's concern; the engine only sees the
// collaborator interfaces.
package authcore
