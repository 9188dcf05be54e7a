package users

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Repository is the credential store. Lookups by username and email are
// case-insensitive; uniqueness is enforced by the store itself.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar models.Avatar) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
}
