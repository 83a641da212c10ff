// Package repairs provides the repair request bounded context module.
package repairs

import (
	"boatyard_backend/internal/events"
	apphttp "boatyard_backend/internal/http"
	"boatyard_backend/internal/repairs/handler"
	"boatyard_backend/internal/repairs/ports"
	"boatyard_backend/internal/repairs/repository"
	"boatyard_backend/internal/repairs/service"
	"boatyard_backend/platform/config"
	"boatyard_backend/platform/logger"
	"boatyard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the repairs bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the repairs module. The ports are
// implemented elsewhere (auth adapters, scheduler, scheduling client) and
// wired in main; reminders and scheduling may be nil when disabled.
func NewModule(
	pool *pgxpool.Pool,
	cfg *config.Config,
	eventBus events.Bus,
	validate *validator.Validator,
	log *logger.Logger,
	users ports.UserProvider,
	staff ports.StaffDirectory,
	reminders ports.ReminderScheduler,
	scheduling ports.BookingCanceller,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, users, staff, reminders, scheduling, eventBus, log, cfg)
	h := handler.New(svc, validate)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "repairs"
}

// Service returns the repairs service.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repairs repository.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts repairs routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/repairs"))
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
