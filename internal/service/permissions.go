// Package service holds the business rules of the blog: authorization,
// validation, derivation and response shaping over the repositories.
package service

import "quill/internal/models"

const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgNoPermission     = "You do not have permission to perform this action."
)

// RequireAuthenticated fails for anonymous requesters.
func RequireAuthenticated(r models.Requester) error {
	if r.IsAnonymous() {
		return models.NewUnauthorizedError(msgNotAuthenticated)
	}
	return nil
}

// AuthorGate allows writes only to authenticated authors.
func AuthorGate(r models.Requester) error {
	if err := RequireAuthenticated(r); err != nil {
		return err
	}
	if !r.IsAuthor {
		return models.NewForbiddenError(msgNoPermission)
	}
	return nil
}

// OwnerGate allows writes on an existing record only to its author.
func OwnerGate(r models.Requester, authorID uint) error {
	if err := RequireAuthenticated(r); err != nil {
		return err
	}
	if !r.Owns(authorID) {
		return models.NewForbiddenError(msgNoPermission)
	}
	return nil
}
