package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"boatyard_backend/internal/events"
	"boatyard_backend/internal/repairs/domain"
	"boatyard_backend/internal/repairs/ports"
	"boatyard_backend/internal/repairs/repository"
	"boatyard_backend/internal/repairs/transport"
	"boatyard_backend/platform/apperr"
	"boatyard_backend/platform/logger"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeStore struct {
	requests map[uuid.UUID]*domain.RepairRequest
	ledger   map[string]*domain.Payment // keyed by gateway ref
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[uuid.UUID]*domain.RepairRequest),
		ledger:   make(map[string]*domain.Payment),
	}
}

func (f *fakeStore) Create(_ context.Context, req *domain.RepairRequest) error {
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.RepairRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperr.NotFound("repair request not found")
	}
	clone := *req
	return &clone, nil
}

func (f *fakeStore) GetByBookingID(_ context.Context, bookingID string) (*domain.RepairRequest, error) {
	for _, req := range f.requests {
		if req.BookingID == bookingID {
			clone := *req
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("repair request not found")
}

func (f *fakeStore) List(_ context.Context, params repository.ListParams) ([]domain.RepairRequest, error) {
	out := []domain.RepairRequest{}
	for _, req := range f.requests {
		if params.CustomerID != nil && req.CustomerID != *params.CustomerID {
			continue
		}
		if params.TechnicianID != nil && (req.AssignedTechnicianID == nil || *req.AssignedTechnicianID != *params.TechnicianID) {
			continue
		}
		if params.Status != nil && string(req.Status) != *params.Status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, req *domain.RepairRequest) error {
	if _, ok := f.requests[req.ID]; !ok {
		return apperr.NotFound("repair request not found")
	}
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.requests[id]; !ok {
		return apperr.NotFound("repair request not found")
	}
	delete(f.requests, id)
	return nil
}

// ApplyFinalPayment mirrors the repository's transactional semantics: the
// completed/unpaid guard and the ledger upsert by gateway ref apply as one
// unit against current state.
func (f *fakeStore) ApplyFinalPayment(ctx context.Context, bookingID, gatewayRef string, amount, defaultAdvance int64, now time.Time) (*domain.RepairRequest, *domain.Payment, error) {
	var req *domain.RepairRequest
	for _, r := range f.requests {
		if r.BookingID == bookingID {
			req = r
			break
		}
	}
	if req == nil {
		return nil, nil, apperr.NotFound("repair request not found")
	}

	req.EnsureCosts(defaultAdvance)
	if err := domain.CanRecordFinalPayment(req); err != nil {
		return nil, nil, err
	}

	payment, ok := f.ledger[gatewayRef]
	if !ok {
		payment = &domain.Payment{ID: uuid.New(), BookingID: bookingID, GatewayRef: gatewayRef, CreatedAt: now}
		f.ledger[gatewayRef] = payment
	}
	payment.Amount = amount
	payment.AmountCents = amount * 100
	payment.Status = domain.TxSucceeded
	paidAt := now
	payment.PaidAt = &paidAt

	req.Costs.ApplyFinalPayment(now)
	req.UpdatedAt = now

	reqClone := *req
	paymentClone := *payment
	return &reqClone, &paymentClone, nil
}

func (f *fakeStore) ListPayments(_ context.Context, bookingID string) ([]domain.Payment, error) {
	out := []domain.Payment{}
	for _, p := range f.ledger {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[uuid.UUID]ports.UserInfo
}

func (f *fakeUsers) GetUserInfo(_ context.Context, userID uuid.UUID) (ports.UserInfo, error) {
	info, ok := f.users[userID]
	if !ok {
		return ports.UserInfo{}, apperr.NotFound("user not found")
	}
	return info, nil
}

type fakeStaff struct {
	staff map[uuid.UUID]bool
}

func (f *fakeStaff) IsEmployee(_ context.Context, userID uuid.UUID) (bool, error) {
	return f.staff[userID], nil
}

type fakeReminders struct {
	scheduled []string
	cancelled []string
}

func (f *fakeReminders) ScheduleReminder(_ context.Context, bookingID string, _ time.Time) error {
	f.scheduled = append(f.scheduled, bookingID)
	return nil
}

func (f *fakeReminders) CancelReminder(_ context.Context, bookingID string) error {
	f.cancelled = append(f.cancelled, bookingID)
	return nil
}

type fakeCanceller struct {
	cancelled []string
}

func (f *fakeCanceller) CancelBooking(_ context.Context, ref string) error {
	f.cancelled = append(f.cancelled, ref)
	return nil
}

// recordingBus captures published events synchronously for assertions.
type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.EventName())
	}
	return out
}

type fakeBilling struct {
	advance int64
}

func (f fakeBilling) GetAdvancePaymentAmount() int64 { return f.advance }

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	svc       *Service
	store     *fakeStore
	staff     *fakeStaff
	users     *fakeUsers
	reminders *fakeReminders
	canceller *fakeCanceller
	bus       *recordingBus
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:     newFakeStore(),
		staff:     &fakeStaff{staff: make(map[uuid.UUID]bool)},
		users:     &fakeUsers{users: make(map[uuid.UUID]ports.UserInfo)},
		reminders: &fakeReminders{},
		canceller: &fakeCanceller{},
		bus:       &recordingBus{},
		now:       time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	h.svc = New(h.store, h.users, h.staff, h.reminders, h.canceller, h.bus, logger.New("test"), fakeBilling{advance: 5000})
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *harness) customer() domain.Actor {
	id := uuid.New()
	h.users.users[id] = ports.UserInfo{ID: id, Name: "Pat Morgan", Email: "pat@example.com"}
	return domain.Actor{ID: id, Roles: []string{domain.RoleCustomer}}
}

func (h *harness) employee() domain.Actor {
	id := uuid.New()
	h.staff.staff[id] = true
	h.users.users[id] = ports.UserInfo{ID: id, Name: "Sam Diaz", Email: "sam@example.com"}
	return domain.Actor{ID: id, Roles: []string{domain.RoleEmployee}}
}

func (h *harness) admin() domain.Actor {
	id := uuid.New()
	h.staff.staff[id] = true
	return domain.Actor{ID: id, Roles: []string{domain.RoleAdmin}}
}

func (h *harness) createRequest(t *testing.T, actor domain.Actor, scheduledAt *time.Time) *domain.RepairRequest {
	t.Helper()
	req, err := h.svc.Create(context.Background(), actor, transport.CreateRepairRequest{
		ServiceType:        "engine",
		ProblemDescription: "Engine stalls at idle",
		ScheduledDateTime:  scheduledAt,
		BoatDetails:        transport.BoatDetailsInput{Make: "Catalina", Model: "320", Year: 2015},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return req
}

func in(h *harness, d time.Duration) *time.Time {
	at := h.now.Add(d)
	return &at
}

func expectKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", kind)
	}
	if !apperr.Is(err, kind) {
		t.Fatalf("expected error kind %v, got %v (%v)", kind, apperr.GetKind(err), err)
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreate_BooksRequestWithAdvance(t *testing.T) {
	h := newHarness(t)
	customer := h.customer()

	req := h.createRequest(t, customer, in(h, 14*24*time.Hour))

	if !strings.HasPrefix(req.BookingID, "BR-20260901-") {
		t.Fatalf("unexpected booking id: %s", req.BookingID)
	}
	if req.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.Costs.AdvancePayment != 5000 || req.Costs.PaymentStatus != domain.PaymentAdvancePaid {
		t.Fatalf("unexpected costs: %+v", req.Costs)
	}
	if len(h.reminders.scheduled) != 1 || h.reminders.scheduled[0] != req.BookingID {
		t.Fatalf("expected reminder scheduled for %s, got %v", req.BookingID, h.reminders.scheduled)
	}
	if names := h.bus.names(); len(names) != 1 || names[0] != "repairs.request.created" {
		t.Fatalf("unexpected events: %v", names)
	}
	created := h.bus.published[0].(events.RepairRequestCreated)
	if created.CustomerEmail != "pat@example.com" || created.AdvanceAmount != 5000 {
		t.Fatalf("unexpected event payload: %+v", created)
	}
}

func TestCreate_StaffCannotBook(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Create(context.Background(), h.employee(), transport.CreateRepairRequest{
		ServiceType:        "engine",
		ProblemDescription: "x",
	})

	expectKind(t, err, apperr.KindForbidden)
}

func TestCreate_NoScheduledTimeSkipsReminder(t *testing.T) {
	h := newHarness(t)

	h.createRequest(t, h.customer(), nil)

	if len(h.reminders.scheduled) != 0 {
		t.Fatalf("expected no reminder without a scheduled time, got %v", h.reminders.scheduled)
	}
}

// ---------------------------------------------------------------------------
// Viewing
// ---------------------------------------------------------------------------

func TestGetByID_OwnerAndStaffAllowed_StrangerDenied(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)

	if _, err := h.svc.GetByID(context.Background(), owner, req.ID); err != nil {
		t.Fatalf("owner should view own request: %v", err)
	}
	if _, err := h.svc.GetByID(context.Background(), h.employee(), req.ID); err != nil {
		t.Fatalf("staff should view any request: %v", err)
	}

	_, err := h.svc.GetByID(context.Background(), h.customer(), req.ID)
	expectKind(t, err, apperr.KindForbidden)
}

func TestListMine_ReturnsOnlyOwnRequests(t *testing.T) {
	h := newHarness(t)
	alice := h.customer()
	bob := h.customer()
	h.createRequest(t, alice, nil)
	h.createRequest(t, alice, nil)
	h.createRequest(t, bob, nil)

	mine, err := h.svc.ListMine(context.Background(), alice)
	if err != nil {
		t.Fatalf("list mine failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(mine))
	}
}

func TestList_CustomerDenied(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.List(context.Background(), h.customer(), ListFilters{})

	expectKind(t, err, apperr.KindForbidden)
}

// ---------------------------------------------------------------------------
// Staff updates
// ---------------------------------------------------------------------------

func TestStaffUpdate_AssignTechnician(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)
	h.bus.published = nil

	manager := h.admin()
	tech := h.employee()
	techID := tech.ID.String()

	updated, err := h.svc.StaffUpdate(context.Background(), manager, req.ID, transport.StaffUpdateRequest{
		AssignedTechnician: &techID,
	})
	if err != nil {
		t.Fatalf("assignment failed: %v", err)
	}

	if updated.Status != domain.StatusAssigned {
		t.Fatalf("expected status assigned, got %s", updated.Status)
	}
	if updated.AssignedTechnicianID == nil || *updated.AssignedTechnicianID != tech.ID {
		t.Fatalf("technician not recorded: %+v", updated)
	}
	if updated.AssignedByID == nil || *updated.AssignedByID != manager.ID {
		t.Fatalf("assigning actor not recorded: %+v", updated)
	}
	if updated.AssignedAt == nil {
		t.Fatalf("assignment timestamp not recorded")
	}

	names := h.bus.names()
	if len(names) != 2 || names[0] != "repairs.request.assigned" || names[1] != "repairs.request.status_changed" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestStaffUpdate_RejectsNonStaffAssignee(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)
	outsider := h.customer()
	outsiderID := outsider.ID.String()

	_, err := h.svc.StaffUpdate(context.Background(), h.admin(), req.ID, transport.StaffUpdateRequest{
		AssignedTechnician: &outsiderID,
	})

	expectKind(t, err, apperr.KindBadRequest)
}

func TestStaffUpdate_RejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)
	status := "teleported"

	_, err := h.svc.StaffUpdate(context.Background(), h.employee(), req.ID, transport.StaffUpdateRequest{
		Status: &status,
	})

	expectKind(t, err, apperr.KindBadRequest)
}

func TestStaffUpdate_AnyDeclaredStatusAccepted(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)
	employee := h.employee()

	// Staff may reorder states freely, including jumping straight to completed.
	status := string(domain.StatusCompleted)
	updated, err := h.svc.StaffUpdate(context.Background(), employee, req.ID, transport.StaffUpdateRequest{
		Status: &status,
	})
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}

	back := string(domain.StatusInProgress)
	if _, err := h.svc.StaffUpdate(context.Background(), employee, req.ID, transport.StaffUpdateRequest{Status: &back}); err != nil {
		t.Fatalf("moving back out of completed should be allowed for staff: %v", err)
	}
}

func TestStaffUpdate_CustomerDenied(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)
	notes := "free upgrade"

	_, err := h.svc.StaffUpdate(context.Background(), owner, req.ID, transport.StaffUpdateRequest{InternalNotes: &notes})

	expectKind(t, err, apperr.KindForbidden)
}

func TestStaffUpdate_FinalCostReconcilesBalance(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)
	finalCost := int64(20000)

	updated, err := h.svc.StaffUpdate(context.Background(), h.employee(), req.ID, transport.StaffUpdateRequest{
		FinalCost: &finalCost,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Costs.RemainingAmount == nil || *updated.Costs.RemainingAmount != 15000 {
		t.Fatalf("expected remaining 15000, got %v", updated.Costs.RemainingAmount)
	}
}

// ---------------------------------------------------------------------------
// Customer edits
// ---------------------------------------------------------------------------

func TestCustomerEdit_MergesNestedFields(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, in(h, 14*24*time.Hour))
	newName := "Sea Breeze"

	updated, err := h.svc.CustomerEdit(context.Background(), owner, req.ID, transport.CustomerEditRequest{
		BoatDetails: &transport.BoatDetailsPatch{Name: &newName},
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if updated.BoatDetails.Name != "Sea Breeze" {
		t.Fatalf("patched field not applied: %+v", updated.BoatDetails)
	}
	if updated.BoatDetails.Make != "Catalina" || updated.BoatDetails.Year != 2015 {
		t.Fatalf("untouched fields were lost: %+v", updated.BoatDetails)
	}
}

func TestCustomerEdit_ClosedAtScheduledTime(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	at := h.now
	req := h.createRequest(t, owner, &at)
	notes := "please check the bilge pump too"

	_, err := h.svc.CustomerEdit(context.Background(), owner, req.ID, transport.CustomerEditRequest{CustomerNotes: &notes})

	expectKind(t, err, apperr.KindBadRequest)
}

func TestCustomerEdit_CompletedStillEditable(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)
	h.store.requests[req.ID].Status = domain.StatusCompleted
	notes := "thanks, runs great now"

	if _, err := h.svc.CustomerEdit(context.Background(), owner, req.ID, transport.CustomerEditRequest{CustomerNotes: &notes}); err != nil {
		t.Fatalf("completed request should accept note corrections: %v", err)
	}
}

func TestCustomerEdit_CancelledRejected(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)
	h.store.requests[req.ID].Status = domain.StatusCancelled
	notes := "actually nevermind"

	_, err := h.svc.CustomerEdit(context.Background(), owner, req.ID, transport.CustomerEditRequest{CustomerNotes: &notes})

	expectKind(t, err, apperr.KindBadRequest)
}

func TestCustomerEdit_NonOwnerDenied(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)
	notes := "not my boat"

	_, err := h.svc.CustomerEdit(context.Background(), h.customer(), req.ID, transport.CustomerEditRequest{CustomerNotes: &notes})

	expectKind(t, err, apperr.KindForbidden)
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

func TestCancel_WithinWindow(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, in(h, 96*time.Hour))
	h.store.requests[req.ID].SchedulingRef = "slot-42"
	h.bus.published = nil

	cancelled, err := h.svc.Cancel(context.Background(), owner, req.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if len(h.canceller.cancelled) != 1 || h.canceller.cancelled[0] != "slot-42" {
		t.Fatalf("expected scheduling slot released, got %v", h.canceller.cancelled)
	}
	if len(h.reminders.cancelled) != 1 {
		t.Fatalf("expected reminder cancelled, got %v", h.reminders.cancelled)
	}
	if names := h.bus.names(); len(names) != 1 || names[0] != "repairs.request.cancelled" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestCancel_WindowBoundary(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()

	// Exactly 72 hours ahead is already too late.
	req := h.createRequest(t, owner, in(h, 72*time.Hour))
	_, err := h.svc.Cancel(context.Background(), owner, req.ID)
	expectKind(t, err, apperr.KindBadRequest)

	// 73 hours ahead is still fine.
	req = h.createRequest(t, owner, in(h, 73*time.Hour))
	if _, err := h.svc.Cancel(context.Background(), owner, req.ID); err != nil {
		t.Fatalf("cancel at 73h should succeed: %v", err)
	}
}

func TestCancel_SecondAttemptRejected(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)

	if _, err := h.svc.Cancel(context.Background(), owner, req.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err := h.svc.Cancel(context.Background(), owner, req.ID)
	expectKind(t, err, apperr.KindBadRequest)
}

func TestCancel_NonOwnerDenied(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), in(h, 96*time.Hour))

	_, err := h.svc.Cancel(context.Background(), h.customer(), req.ID)

	expectKind(t, err, apperr.KindForbidden)
}

// ---------------------------------------------------------------------------
// Deletion
// ---------------------------------------------------------------------------

func TestCustomerDelete_WindowEnforced(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()

	req := h.createRequest(t, owner, in(h, 48*time.Hour))
	err := h.svc.CustomerDelete(context.Background(), owner, req.ID)
	expectKind(t, err, apperr.KindBadRequest)

	req = h.createRequest(t, owner, in(h, 96*time.Hour))
	if err := h.svc.CustomerDelete(context.Background(), owner, req.ID); err != nil {
		t.Fatalf("delete within window failed: %v", err)
	}
	if _, err := h.store.GetByID(context.Background(), req.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected request removed, got %v", err)
	}
}

func TestAdminDelete_IgnoresWindow(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), in(h, time.Hour))

	if err := h.svc.AdminDelete(context.Background(), h.admin(), req.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}

	err := h.svc.AdminDelete(context.Background(), h.admin(), req.ID)
	expectKind(t, err, apperr.KindNotFound)
}

func TestAdminDelete_EmployeeDenied(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)

	err := h.svc.AdminDelete(context.Background(), h.employee(), req.ID)

	expectKind(t, err, apperr.KindForbidden)
}

// ---------------------------------------------------------------------------
// Billing
// ---------------------------------------------------------------------------

func TestSendInvoice_ReconcilesBalance(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)
	h.store.requests[req.ID].Status = domain.StatusCompleted
	h.bus.published = nil

	invoiced, err := h.svc.SendInvoice(context.Background(), h.employee(), req.BookingID, 20000)
	if err != nil {
		t.Fatalf("send invoice failed: %v", err)
	}

	if invoiced.Costs.PaymentStatus != domain.PaymentInvoiceSent {
		t.Fatalf("expected invoice_sent, got %s", invoiced.Costs.PaymentStatus)
	}
	if invoiced.Costs.RemainingAmount == nil || *invoiced.Costs.RemainingAmount != 15000 {
		t.Fatalf("expected remaining 15000, got %v", invoiced.Costs.RemainingAmount)
	}
	if names := h.bus.names(); len(names) != 1 || names[0] != "repairs.invoice.sent" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestSendInvoice_NegativeBalanceAllowed(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)

	invoiced, err := h.svc.SendInvoice(context.Background(), h.employee(), req.BookingID, 3000)
	if err != nil {
		t.Fatalf("send invoice failed: %v", err)
	}
	if invoiced.Costs.RemainingAmount == nil || *invoiced.Costs.RemainingAmount != -2000 {
		t.Fatalf("expected remaining -2000, got %v", invoiced.Costs.RemainingAmount)
	}
}

func TestSendInvoice_ReissueKeepsOriginalStamp(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)

	first, err := h.svc.SendInvoice(context.Background(), h.employee(), req.BookingID, 10000)
	if err != nil {
		t.Fatalf("first invoice failed: %v", err)
	}

	h.now = h.now.Add(24 * time.Hour)
	second, err := h.svc.SendInvoice(context.Background(), h.employee(), req.BookingID, 12000)
	if err != nil {
		t.Fatalf("second invoice failed: %v", err)
	}

	if !second.Costs.InvoiceSentAt.Equal(*first.Costs.InvoiceSentAt) {
		t.Fatalf("expected invoice timestamp preserved, got %v then %v", first.Costs.InvoiceSentAt, second.Costs.InvoiceSentAt)
	}
	if *second.Costs.RemainingAmount != 7000 {
		t.Fatalf("expected remaining recomputed to 7000, got %d", *second.Costs.RemainingAmount)
	}
}

func TestSendInvoice_CustomerDenied(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)

	_, err := h.svc.SendInvoice(context.Background(), owner, req.BookingID, 20000)

	expectKind(t, err, apperr.KindForbidden)
}

func TestRecordFinalPayment_RequiresCompletion(t *testing.T) {
	h := newHarness(t)
	req := h.createRequest(t, h.customer(), nil)

	_, _, err := h.svc.RecordFinalPayment(context.Background(), h.employee(), req.BookingID, "pi_1", 15000)

	expectKind(t, err, apperr.KindBadRequest)
}

func TestRecordFinalPayment_SettlesOnce(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)
	h.store.requests[req.ID].Status = domain.StatusCompleted
	employee := h.employee()

	if _, err := h.svc.SendInvoice(context.Background(), employee, req.BookingID, 20000); err != nil {
		t.Fatalf("send invoice failed: %v", err)
	}
	h.bus.published = nil

	paid, payment, err := h.svc.RecordFinalPayment(context.Background(), employee, req.BookingID, "pi_abc", 15000)
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if paid.Costs.PaymentStatus != domain.PaymentFullyPaid {
		t.Fatalf("expected fully_paid, got %s", paid.Costs.PaymentStatus)
	}
	if payment.AmountCents != 1500000 || payment.Status != domain.TxSucceeded {
		t.Fatalf("unexpected ledger record: %+v", payment)
	}
	if names := h.bus.names(); len(names) != 1 || names[0] != "repairs.payment.final_received" {
		t.Fatalf("unexpected events: %v", names)
	}

	// A second callback with a fresh transaction ref is rejected outright.
	_, _, err = h.svc.RecordFinalPayment(context.Background(), employee, req.BookingID, "pi_other", 15000)
	expectKind(t, err, apperr.KindBadRequest)

	ledger, err := h.svc.ListPayments(context.Background(), employee, req.BookingID)
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("expected exactly one ledger row, got %d", len(ledger))
	}
}

func TestListPayments_OwnerAllowedStrangerDenied(t *testing.T) {
	h := newHarness(t)
	owner := h.customer()
	req := h.createRequest(t, owner, nil)

	if _, err := h.svc.ListPayments(context.Background(), owner, req.BookingID); err != nil {
		t.Fatalf("owner should view own ledger: %v", err)
	}

	_, err := h.svc.ListPayments(context.Background(), h.customer(), req.BookingID)
	expectKind(t, err, apperr.KindForbidden)
}
