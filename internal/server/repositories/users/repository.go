// Package users is the metadata store adapter for user accounts. Accounts
// are keyed by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail fails with common.ErrorNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	SetEmailVerified(ctx context.Context, email string, verified bool) error
	// DeleteByEmail reports how many accounts were removed.
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}
