package models

import "github.com/google/uuid"

// User represents a registered user account.
//
// Identity is established by an external provider: IdentityToken holds the
// provider's stable subject identifier (e.g. an OAuth subject). Once bound,
// the token must match on every subsequent connection from the same account;
// a mismatch is a hard rejection, never a silent update.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `json:"id"`

	// Email is the user's email address (unique). It doubles as the lookup
	// key during connection handshakes.
	Email string `json:"email"`

	// FirstName and LastName are the display name parts.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// IdentityToken is the external provider's subject identifier. It is
	// compared for byte equality on reconnect and never updated in place.
	IdentityToken string `json:"-"`

	// CreatedAt is the epoch-millisecond timestamp when the account was
	// created.
	CreatedAt int64 `json:"created_at"`
}

// IdentityClaim is the identity payload a client presents on connect.
//
// Either the identity fields or ResumeToken must be supplied. UserID is the
// client's claimed ID; lookup happens by email, so the claim is informational.
type IdentityClaim struct {
	UserID        uuid.UUID `json:"user_id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	IdentityToken string    `json:"identity_token"`

	// ResumeToken is a signed token previously issued in a "connected" ack.
	// When present it replaces the identity fields entirely.
	ResumeToken string `json:"resume_token,omitempty"`
}
