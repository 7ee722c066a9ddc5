package repo

import "context"

// RefreshTokenStore maps refresh-token strings to user ids. At most one
// live token exists per user; Assign enforces that by dropping any
// previous binding for the user before inserting the new one.
type RefreshTokenStore interface {
	// LookupUser resolves a refresh token to a user id. Returns
	// errors.ErrNotFound when the token is unknown or unbound.
	LookupUser(ctx context.Context, refreshToken string) (string, error)

	Assign(ctx context.Context, userID, refreshToken string) error

	// Rotate rebinds the user of oldToken to newToken and drops
	// oldToken. When oldToken was absent the new token ends up with no
	// bound user, so a later LookupUser on it fails.
	Rotate(ctx context.Context, oldToken, newToken string) error

	// Revoke drops the live token of userID, if any.
	Revoke(ctx context.Context, userID string) error
}
