// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"boatyard_backend/internal/auth/handler"
	"boatyard_backend/internal/auth/repository"
	"boatyard_backend/internal/auth/service"
	"boatyard_backend/internal/events"
	apphttp "boatyard_backend/internal/http"
	"boatyard_backend/platform/config"
	"boatyard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, eventBus events.Bus, validate *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus)
	h := handler.New(svc, validate)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for use by other composition-root consumers.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the auth repository for adapters (user provider, staff directory).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	// Protected user routes
	ctx.Protected.GET("/users/me", m.handler.GetMe)

	// Admin routes
	ctx.Admin.GET("/users", m.handler.ListUsers)
	ctx.Admin.PUT("/users/:id/roles", m.handler.SetUserRoles)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
