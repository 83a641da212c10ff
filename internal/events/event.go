// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"boatyard_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event     = events.Event
	Bus       = events.Bus
	Handler   = events.Handler
	BaseEvent = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Repair Domain Events
// =============================================================================

// RepairRequestCreated is published when a customer submits a new repair request.
type RepairRequestCreated struct {
	BaseEvent
	RequestID     uuid.UUID `json:"requestId"`
	BookingID     string    `json:"bookingId"`
	CustomerID    uuid.UUID `json:"customerId"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName"`
	ServiceType   string    `json:"serviceType"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	AdvanceAmount int64     `json:"advanceAmount"`
}

func (e RepairRequestCreated) EventName() string { return "repairs.request.created" }

// RepairAssigned is published when a staff member is assigned to a repair request.
type RepairAssigned struct {
	BaseEvent
	RequestID     uuid.UUID `json:"requestId"`
	BookingID     string    `json:"bookingId"`
	CustomerID    uuid.UUID `json:"customerId"`
	CustomerEmail string    `json:"customerEmail"`
	EmployeeID    uuid.UUID `json:"employeeId"`
	EmployeeName  string    `json:"employeeName"`
	AssignedByID  uuid.UUID `json:"assignedById"`
}

func (e RepairAssigned) EventName() string { return "repairs.request.assigned" }

// RepairStatusChanged is published when a repair request moves to a new status.
type RepairStatusChanged struct {
	BaseEvent
	RequestID     uuid.UUID `json:"requestId"`
	BookingID     string    `json:"bookingId"`
	CustomerID    uuid.UUID `json:"customerId"`
	CustomerEmail string    `json:"customerEmail"`
	OldStatus     string    `json:"oldStatus"`
	NewStatus     string    `json:"newStatus"`
	ActorID       uuid.UUID `json:"actorId"`
}

func (e RepairStatusChanged) EventName() string { return "repairs.request.status_changed" }

// RepairCancelled is published when a repair request is cancelled.
type RepairCancelled struct {
	BaseEvent
	RequestID     uuid.UUID `json:"requestId"`
	BookingID     string    `json:"bookingId"`
	CustomerID    uuid.UUID `json:"customerId"`
	CustomerEmail string    `json:"customerEmail"`
	CancelledByID uuid.UUID `json:"cancelledById"`
	ScheduledAt   time.Time `json:"scheduledAt"`
}

func (e RepairCancelled) EventName() string { return "repairs.request.cancelled" }

// InvoiceSent is published when the final invoice for a completed repair is issued.
type InvoiceSent struct {
	BaseEvent
	RequestID       uuid.UUID `json:"requestId"`
	BookingID       string    `json:"bookingId"`
	CustomerID      uuid.UUID `json:"customerId"`
	CustomerEmail   string    `json:"customerEmail"`
	FinalCost       int64     `json:"finalCost"`
	AdvancePayment  int64     `json:"advancePayment"`
	RemainingAmount int64     `json:"remainingAmount"`
}

func (e InvoiceSent) EventName() string { return "repairs.invoice.sent" }

// FinalPaymentReceived is published when the remaining balance is settled.
type FinalPaymentReceived struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	BookingID      string    `json:"bookingId"`
	CustomerID     uuid.UUID `json:"customerId"`
	CustomerEmail  string    `json:"customerEmail"`
	PaymentID      uuid.UUID `json:"paymentId"`
	Amount         int64     `json:"amount"`
	GatewayRef     string    `json:"gatewayRef"`
	AlreadyApplied bool      `json:"alreadyApplied"`
}

func (e FinalPaymentReceived) EventName() string { return "repairs.payment.final_received" }
