// Package auth resolves connection identities and issues session resume tokens.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/storage"
)

var (
	// ErrMissingIdentityToken is returned when a connect payload carries no
	// external identity token.
	ErrMissingIdentityToken = errors.New("identity token required")

	// ErrIdentityMismatch is returned when the claimed identity token does
	// not equal the one bound to the account, or a resume token is invalid.
	ErrIdentityMismatch = errors.New("identity token does not match")
)

// UserStorage defines the interface for user persistence operations.
// This allows the resolver to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Resolver binds inbound connections to user accounts. A claim for an unknown
// email registers a new account; a claim for a known email must present the
// identity token bound at registration. Tokens are compared, never reconciled.
type Resolver struct {
	storage UserStorage
	tokens  *TokenManager
}

// NewResolver creates a resolver backed by the given storage. tokens may be
// nil, in which case resume tokens are rejected.
func NewResolver(storage UserStorage, tokens *TokenManager) *Resolver {
	return &Resolver{storage: storage, tokens: tokens}
}

// Resolve returns the user the claim binds to, creating the account on first
// contact. The claimed email is the lookup key; the claimed user ID is not
// consulted.
func (r *Resolver) Resolve(ctx context.Context, claim models.IdentityClaim) (*models.User, error) {
	if claim.ResumeToken != "" {
		return r.resolveResumeToken(ctx, claim.ResumeToken)
	}

	existing, err := r.storage.GetUserByEmail(ctx, claim.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if errors.Is(err, storage.ErrNotFound) {
		// New registration. The identity token is required at creation time;
		// without it there is nothing to verify reconnections against.
		if claim.IdentityToken == "" {
			return nil, ErrMissingIdentityToken
		}
		user := &models.User{
			Email:         claim.Email,
			FirstName:     claim.FirstName,
			LastName:      claim.LastName,
			IdentityToken: claim.IdentityToken,
		}
		if err := r.storage.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	// Reconnection: the presented token must equal the stored one.
	if claim.IdentityToken == "" {
		return nil, ErrMissingIdentityToken
	}
	if claim.IdentityToken != existing.IdentityToken {
		return nil, ErrIdentityMismatch
	}
	return existing, nil
}

func (r *Resolver) resolveResumeToken(ctx context.Context, token string) (*models.User, error) {
	if r.tokens == nil {
		return nil, ErrIdentityMismatch
	}
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, ErrIdentityMismatch
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrIdentityMismatch
	}
	user, err := r.storage.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrIdentityMismatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.Email != claims.Email {
		return nil, ErrIdentityMismatch
	}
	return user, nil
}
