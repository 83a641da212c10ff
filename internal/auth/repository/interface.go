package repository

import (
	"context"

	"github.com/google/uuid"
)

// UserReader is the narrow read-side interface adapters use to expose user
// information to other domains without leaking the full repository.
type UserReader interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	ListUsersWithRole(ctx context.Context, role string) ([]UserWithRoles, error)
}

var _ UserReader = (*Repository)(nil)
