// Package adapter provides implementations of external interfaces that other domains need.
// This follows the Anti-Corruption Layer pattern - the auth domain provides adapters
// that satisfy consumer-driven interfaces defined by other domains.
package adapter

import (
	"context"

	"boatyard_backend/internal/auth/repository"
	"boatyard_backend/internal/auth/service"
	"boatyard_backend/internal/repairs/ports"

	"github.com/google/uuid"
)

// UserProviderAdapter implements repairs/ports.UserProvider using the auth repository.
type UserProviderAdapter struct {
	repo repository.UserReader
}

// NewUserProviderAdapter creates a new adapter for providing user info to other domains.
func NewUserProviderAdapter(repo repository.UserReader) *UserProviderAdapter {
	return &UserProviderAdapter{repo: repo}
}

// GetUserInfo implements ports.UserProvider.
func (a *UserProviderAdapter) GetUserInfo(ctx context.Context, userID uuid.UUID) (ports.UserInfo, error) {
	user, err := a.repo.GetUserByID(ctx, userID)
	if err != nil {
		return ports.UserInfo{}, err
	}

	return ports.UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
	}, nil
}

var _ ports.UserProvider = (*UserProviderAdapter)(nil)

// StaffDirectoryAdapter implements repairs/ports.StaffDirectory over the auth repository.
type StaffDirectoryAdapter struct {
	repo repository.UserReader
}

// NewStaffDirectoryAdapter creates a new adapter for staff lookups.
func NewStaffDirectoryAdapter(repo repository.UserReader) *StaffDirectoryAdapter {
	return &StaffDirectoryAdapter{repo: repo}
}

// IsEmployee implements ports.StaffDirectory.
func (a *StaffDirectoryAdapter) IsEmployee(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := a.repo.HasRole(ctx, userID, service.RoleEmployee)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	// Admins may take assignments themselves.
	return a.repo.HasRole(ctx, userID, service.RoleAdmin)
}

var _ ports.StaffDirectory = (*StaffDirectoryAdapter)(nil)
