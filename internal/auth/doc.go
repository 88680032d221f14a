// Package auth implements account management and authentication.
//
// Passwords are hashed with Argon2id and stored in PHC string format.
// Login issues a short-lived HS256 JWT carrying the account type; the
// token is validated by signature alone so authenticated requests never
// touch the database. On first boot an admin account is seeded with a
// random one-time password.
package auth
