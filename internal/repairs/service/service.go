// Package service orchestrates repair request operations: authorization,
// lifecycle transitions and persistence, plus the best-effort side effects
// (events, reminders, external scheduler).
package service

import (
	"context"
	"errors"
	"time"

	"boatyard_backend/internal/events"
	"boatyard_backend/internal/repairs/domain"
	"boatyard_backend/internal/repairs/ports"
	"boatyard_backend/internal/repairs/repository"
	"boatyard_backend/internal/repairs/transport"
	"boatyard_backend/platform/apperr"
	"boatyard_backend/platform/config"
	"boatyard_backend/platform/logger"
	"boatyard_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the persistence surface the service depends on. The repairs
// repository implements it; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, req *domain.RepairRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairRequest, error)
	GetByBookingID(ctx context.Context, bookingID string) (*domain.RepairRequest, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.RepairRequest, error)
	Update(ctx context.Context, req *domain.RepairRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	ApplyFinalPayment(ctx context.Context, bookingID, gatewayRef string, amount, defaultAdvance int64, now time.Time) (*domain.RepairRequest, *domain.Payment, error)
	ListPayments(ctx context.Context, bookingID string) ([]domain.Payment, error)
}

// Service implements the repair request use cases.
type Service struct {
	store      Store
	users      ports.UserProvider
	staff      ports.StaffDirectory
	reminders  ports.ReminderScheduler
	scheduling ports.BookingCanceller
	bus        events.Bus
	log        *logger.Logger
	billing    config.BillingConfig
	now        func() time.Time
}

// New creates the repairs service. reminders and scheduling may be nil when
// the corresponding integrations are disabled.
func New(
	store Store,
	users ports.UserProvider,
	staff ports.StaffDirectory,
	reminders ports.ReminderScheduler,
	scheduling ports.BookingCanceller,
	bus events.Bus,
	log *logger.Logger,
	billing config.BillingConfig,
) *Service {
	return &Service{
		store:      store,
		users:      users,
		staff:      staff,
		reminders:  reminders,
		scheduling: scheduling,
		bus:        bus,
		log:        log,
		billing:    billing,
		now:        time.Now,
	}
}

// denialError maps a policy denial to a typed application error.
func denialError(d domain.Decision) error {
	switch d.Kind {
	case domain.DenyWindowExpired:
		return apperr.BadRequest(d.Reason)
	default:
		return apperr.Forbidden(d.Reason)
	}
}

// lifecycleError maps domain guard failures to typed application errors.
// Redundant transitions are client errors, never silently ignored.
func lifecycleError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadyTerminal),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrInvalidAssignee),
		errors.Is(err, domain.ErrNotCompleted),
		errors.Is(err, domain.ErrAlreadyPaid):
		return apperr.BadRequest(err.Error())
	default:
		return err
	}
}

// Create books a new repair request for the acting customer.
func (s *Service) Create(ctx context.Context, actor domain.Actor, input transport.CreateRepairRequest) (*domain.RepairRequest, error) {
	if d := domain.CanPerform(actor, nil, domain.ActionCreate, s.now()); !d.Allowed {
		return nil, denialError(d)
	}

	now := s.now()
	bookingID, err := domain.GenerateBookingID(now)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate booking id", err)
	}

	req := &domain.RepairRequest{
		ID:                 uuid.New(),
		BookingID:          bookingID,
		CustomerID:         actor.ID,
		Status:             domain.StatusPending,
		ScheduledAt:        input.ScheduledDateTime,
		ServiceType:        sanitize.Text(input.ServiceType),
		ProblemDescription: sanitize.Text(input.ProblemDescription),
		ServiceDescription: sanitize.Text(input.ServiceDescription),
		BoatDetails: domain.BoatDetails{
			Make:               sanitize.Text(input.BoatDetails.Make),
			Model:              sanitize.Text(input.BoatDetails.Model),
			Year:               input.BoatDetails.Year,
			LengthFt:           input.BoatDetails.LengthFt,
			HullID:             sanitize.Text(input.BoatDetails.HullID),
			Name:               sanitize.Text(input.BoatDetails.Name),
			RegistrationNumber: sanitize.Text(input.BoatDetails.RegistrationNumber),
		},
		Photos: input.Photos,
		ServiceLocation: domain.ServiceLocation{
			Type:       input.ServiceLocation.Type,
			MarinaName: sanitize.Text(input.ServiceLocation.MarinaName),
			SlipNumber: sanitize.Text(input.ServiceLocation.SlipNumber),
			Address:    sanitize.Text(input.ServiceLocation.Address),
			City:       sanitize.Text(input.ServiceLocation.City),
			State:      sanitize.Text(input.ServiceLocation.State),
			PostalCode: sanitize.Text(input.ServiceLocation.PostalCode),
		},
		CustomerNotes: sanitize.Text(input.CustomerNotes),
		Priority:      domain.PriorityNormal,
		Costs:         domain.NewRepairCosts(s.billing.GetAdvancePaymentAmount()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}

	if s.reminders != nil && req.ScheduledAt != nil {
		if err := s.reminders.ScheduleReminder(ctx, req.BookingID, *req.ScheduledAt); err != nil {
			s.log.UpstreamFailure("scheduler", "schedule reminder", err)
		}
	}

	customer := s.resolveUser(ctx, req.CustomerID)
	s.bus.Publish(ctx, events.RepairRequestCreated{
		BaseEvent:     events.NewBaseEvent(),
		RequestID:     req.ID,
		BookingID:     req.BookingID,
		CustomerID:    req.CustomerID,
		CustomerEmail: customer.Email,
		CustomerName:  customer.Name,
		ServiceType:   req.ServiceType,
		ScheduledAt:   derefTime(req.ScheduledAt),
		AdvanceAmount: req.Costs.AdvancePayment,
	})

	return req, nil
}

// ListFilters narrows the staff listing.
type ListFilters struct {
	Status       *string
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	Limit        int
	Offset       int
}

// List returns repair requests for staff.
func (s *Service) List(ctx context.Context, actor domain.Actor, filters ListFilters) ([]domain.RepairRequest, error) {
	if d := domain.CanPerform(actor, nil, domain.ActionViewAll, s.now()); !d.Allowed {
		return nil, denialError(d)
	}

	return s.store.List(ctx, repository.ListParams{
		Status:       filters.Status,
		CustomerID:   filters.CustomerID,
		TechnicianID: filters.TechnicianID,
		Limit:        clampPageSize(filters.Limit),
		Offset:       filters.Offset,
	})
}

// ListMine returns the acting customer's own requests.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor) ([]domain.RepairRequest, error) {
	if d := domain.CanPerform(actor, nil, domain.ActionViewMine, s.now()); !d.Allowed {
		return nil, denialError(d)
	}

	customerID := actor.ID
	return s.store.List(ctx, repository.ListParams{CustomerID: &customerID})
}

// GetByID returns one request if the actor may view it. Unauthorized access
// surfaces as a plain authorization failure regardless of whether the
// request exists.
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.RepairRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := domain.CanPerform(actor, req, domain.ActionViewOne, s.now()); !d.Allowed {
		return nil, denialError(d)
	}

	return req, nil
}

// StaffUpdate patches staff-owned fields: status, assignment, costs, notes.
func (s *Service) StaffUpdate(ctx context.Context, actor domain.Actor, id uuid.UUID, patch transport.StaffUpdateRequest) (*domain.RepairRequest, error) {
	now := s.now()
	if d := domain.CanPerform(actor, nil, domain.ActionUpdateStaffFields, now); !d.Allowed {
		return nil, denialError(d)
	}

	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := req.Status
	assigned := false

	if patch.AssignedTechnician != nil {
		technicianID, err := uuid.Parse(*patch.AssignedTechnician)
		if err != nil {
			return nil, apperr.Validation("invalid technician id")
		}
		isStaff, err := s.staff.IsEmployee(ctx, technicianID)
		if err != nil {
			return nil, err
		}
		if !isStaff {
			return nil, lifecycleError(domain.ErrInvalidAssignee)
		}

		actorID := actor.ID
		req.AssignedTechnicianID = &technicianID
		req.AssignedByID = &actorID
		assignedAt := now
		req.AssignedAt = &assignedAt
		if patch.Status == nil && req.Status == domain.StatusPending {
			req.Status = domain.StatusAssigned
		}
		assigned = true
	}

	if patch.Status != nil {
		status := domain.Status(*patch.Status)
		if err := domain.ValidateStaffStatus(status); err != nil {
			return nil, lifecycleError(err)
		}
		req.Status = status
	}

	if patch.EstimatedCost != nil {
		req.Costs.EstimatedCost = patch.EstimatedCost
	}
	if patch.FinalCost != nil {
		req.Costs.FinalCost = patch.FinalCost
		req.Costs.Reconcile()
	}
	if patch.InternalNotes != nil {
		req.InternalNotes = sanitize.Text(*patch.InternalNotes)
	}
	if patch.Priority != nil {
		req.Priority = *patch.Priority
	}
	if patch.WorkPerformed != nil {
		req.WorkPerformed = sanitize.Text(*patch.WorkPerformed)
	}
	if patch.PartsUsed != nil {
		req.PartsUsed = sanitize.Text(*patch.PartsUsed)
	}
	if patch.LaborHours != nil {
		req.LaborHours = *patch.LaborHours
	}
	if patch.LaborRate != nil {
		req.LaborRate = *patch.LaborRate
	}

	if err := s.store.Update(ctx, req); err != nil {
		return nil, err
	}

	customer := s.resolveUser(ctx, req.CustomerID)

	if assigned && req.AssignedTechnicianID != nil {
		technician := s.resolveUser(ctx, *req.AssignedTechnicianID)
		s.bus.Publish(ctx, events.RepairAssigned{
			BaseEvent:     events.NewBaseEvent(),
			RequestID:     req.ID,
			BookingID:     req.BookingID,
			CustomerID:    req.CustomerID,
			CustomerEmail: customer.Email,
			EmployeeID:    *req.AssignedTechnicianID,
			EmployeeName:  technician.Name,
			AssignedByID:  actor.ID,
		})
	}

	if req.Status != oldStatus {
		s.bus.Publish(ctx, events.RepairStatusChanged{
			BaseEvent:     events.NewBaseEvent(),
			RequestID:     req.ID,
			BookingID:     req.BookingID,
			CustomerID:    req.CustomerID,
			CustomerEmail: customer.Email,
			OldStatus:     string(oldStatus),
			NewStatus:     string(req.Status),
			ActorID:       actor.ID,
		})
	}

	return req, nil
}

// CustomerEdit merges customer-owned fields within the edit window. Nested
// objects are patched field by field, never replaced wholesale.
func (s *Service) CustomerEdit(ctx context.Context, actor domain.Actor, id uuid.UUID, patch transport.CustomerEditRequest) (*domain.RepairRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := domain.CanPerform(actor, req, domain.ActionEditOwnFields, s.now()); !d.Allowed {
		return nil, denialError(d)
	}
	if err := domain.CanCustomerEdit(req); err != nil {
		return nil, lifecycleError(err)
	}

	if patch.ProblemDescription != nil {
		req.ProblemDescription = sanitize.Text(*patch.ProblemDescription)
	}
	if patch.ServiceDescription != nil {
		req.ServiceDescription = sanitize.Text(*patch.ServiceDescription)
	}
	if patch.CustomerNotes != nil {
		req.CustomerNotes = sanitize.Text(*patch.CustomerNotes)
	}
	if patch.Photos != nil {
		req.Photos = *patch.Photos
	}
	if patch.BoatDetails != nil {
		mergeBoatDetails(&req.BoatDetails, patch.BoatDetails)
	}
	if patch.ServiceLocation != nil {
		mergeServiceLocation(&req.ServiceLocation, patch.ServiceLocation)
	}

	if err := s.store.Update(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// Cancel performs customer-initiated cancellation, gated by the 72 hour
// window. The external scheduling slot is released best-effort.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.RepairRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := domain.CanPerform(actor, req, domain.ActionCancelOwn, s.now()); !d.Allowed {
		return nil, denialError(d)
	}
	if err := domain.CanCancel(req); err != nil {
		return nil, lifecycleError(err)
	}

	req.Status = domain.StatusCancelled
	if err := s.store.Update(ctx, req); err != nil {
		return nil, err
	}

	s.releaseBooking(ctx, req)

	customer := s.resolveUser(ctx, req.CustomerID)
	s.bus.Publish(ctx, events.RepairCancelled{
		BaseEvent:     events.NewBaseEvent(),
		RequestID:     req.ID,
		BookingID:     req.BookingID,
		CustomerID:    req.CustomerID,
		CustomerEmail: customer.Email,
		CancelledByID: actor.ID,
		ScheduledAt:   derefTime(req.ScheduledAt),
	})

	return req, nil
}

// CustomerDelete removes the customer's own request, reusing the
// cancellation window rule.
func (s *Service) CustomerDelete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if d := domain.CanPerform(actor, req, domain.ActionDeleteOwn, s.now()); !d.Allowed {
		return denialError(d)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.releaseBooking(ctx, req)
	return nil
}

// AdminDelete removes any request unconditionally.
func (s *Service) AdminDelete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if d := domain.CanPerform(actor, nil, domain.ActionDeleteAny, s.now()); !d.Allowed {
		return denialError(d)
	}

	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.releaseBooking(ctx, req)
	return nil
}

// releaseBooking cancels the reminder and the external scheduling slot.
// Both are best-effort: failures are logged and never surfaced.
func (s *Service) releaseBooking(ctx context.Context, req *domain.RepairRequest) {
	if s.reminders != nil {
		if err := s.reminders.CancelReminder(ctx, req.BookingID); err != nil {
			s.log.UpstreamFailure("scheduler", "cancel reminder", err)
		}
	}
	if s.scheduling != nil && req.SchedulingRef != "" {
		if err := s.scheduling.CancelBooking(ctx, req.SchedulingRef); err != nil {
			s.log.UpstreamFailure("scheduling widget", "cancel booking", err)
		}
	}
}

// resolveUser fetches user info for event payloads. Lookup failures degrade
// to an empty projection; downstream handlers skip blank recipients.
func (s *Service) resolveUser(ctx context.Context, userID uuid.UUID) ports.UserInfo {
	info, err := s.users.GetUserInfo(ctx, userID)
	if err != nil {
		s.log.UpstreamFailure("auth", "resolve user", err)
		return ports.UserInfo{ID: userID}
	}
	return info
}

func mergeBoatDetails(dst *domain.BoatDetails, patch *transport.BoatDetailsPatch) {
	if patch.Make != nil {
		dst.Make = sanitize.Text(*patch.Make)
	}
	if patch.Model != nil {
		dst.Model = sanitize.Text(*patch.Model)
	}
	if patch.Year != nil {
		dst.Year = *patch.Year
	}
	if patch.LengthFt != nil {
		dst.LengthFt = *patch.LengthFt
	}
	if patch.HullID != nil {
		dst.HullID = sanitize.Text(*patch.HullID)
	}
	if patch.Name != nil {
		dst.Name = sanitize.Text(*patch.Name)
	}
	if patch.RegistrationNumber != nil {
		dst.RegistrationNumber = sanitize.Text(*patch.RegistrationNumber)
	}
}

func mergeServiceLocation(dst *domain.ServiceLocation, patch *transport.ServiceLocationPatch) {
	if patch.Type != nil {
		dst.Type = *patch.Type
	}
	if patch.MarinaName != nil {
		dst.MarinaName = sanitize.Text(*patch.MarinaName)
	}
	if patch.SlipNumber != nil {
		dst.SlipNumber = sanitize.Text(*patch.SlipNumber)
	}
	if patch.Address != nil {
		dst.Address = sanitize.Text(*patch.Address)
	}
	if patch.City != nil {
		dst.City = sanitize.Text(*patch.City)
	}
	if patch.State != nil {
		dst.State = sanitize.Text(*patch.State)
	}
	if patch.PostalCode != nil {
		dst.PostalCode = sanitize.Text(*patch.PostalCode)
	}
}

func clampPageSize(limit int) int {
	const defaultPageSize = 50
	const maxPageSize = 200
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
