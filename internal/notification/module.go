// Package notification provides event handlers for sending customer emails
// in response to domain events. This module subscribes to events and inverts
// the dependency: domain modules never talk to email providers or templates.
package notification

import (
	"context"

	"boatyard_backend/internal/email"
	"boatyard_backend/internal/events"
	"boatyard_backend/platform/logger"
)

const scheduledDateLayout = "Monday, January 2, 2006 at 3:04 PM"

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// New creates a new notification module.
func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.UserSignedUp{}.EventName(), m)
	bus.Subscribe(events.RepairRequestCreated{}.EventName(), m)
	bus.Subscribe(events.RepairAssigned{}.EventName(), m)
	bus.Subscribe(events.RepairStatusChanged{}.EventName(), m)
	bus.Subscribe(events.RepairCancelled{}.EventName(), m)
	bus.Subscribe(events.InvoiceSent{}.EventName(), m)
	bus.Subscribe(events.FinalPaymentReceived{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserSignedUp:
		return m.handleUserSignedUp(ctx, e)
	case events.RepairRequestCreated:
		return m.handleRepairRequestCreated(ctx, e)
	case events.RepairAssigned:
		return m.handleRepairAssigned(ctx, e)
	case events.RepairStatusChanged:
		return m.handleRepairStatusChanged(ctx, e)
	case events.RepairCancelled:
		return m.handleRepairCancelled(ctx, e)
	case events.InvoiceSent:
		return m.handleInvoiceSent(ctx, e)
	case events.FinalPaymentReceived:
		return m.handleFinalPaymentReceived(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleUserSignedUp(ctx context.Context, e events.UserSignedUp) error {
	if e.Email == "" {
		return nil
	}
	if err := m.sender.SendWelcomeEmail(ctx, e.Email, e.Name); err != nil {
		m.log.UpstreamFailure("email", "welcome", err)
		return err
	}
	m.log.Info("welcome email sent", "userId", e.UserID, "email", e.Email)
	return nil
}

func (m *Module) handleRepairRequestCreated(ctx context.Context, e events.RepairRequestCreated) error {
	if e.CustomerEmail == "" {
		return nil
	}
	scheduled := ""
	if !e.ScheduledAt.IsZero() {
		scheduled = e.ScheduledAt.Format(scheduledDateLayout)
	}
	if err := m.sender.SendBookingConfirmationEmail(ctx, e.CustomerEmail, e.CustomerName, e.BookingID, e.ServiceType, scheduled, toCents(e.AdvanceAmount)); err != nil {
		m.log.UpstreamFailure("email", "booking confirmation", err)
		return err
	}
	m.log.Info("booking confirmation sent", "bookingId", e.BookingID, "email", e.CustomerEmail)
	return nil
}

func (m *Module) handleRepairAssigned(ctx context.Context, e events.RepairAssigned) error {
	if e.CustomerEmail == "" {
		return nil
	}
	if err := m.sender.SendAssignmentEmail(ctx, e.CustomerEmail, "", e.BookingID, e.EmployeeName); err != nil {
		m.log.UpstreamFailure("email", "assignment", err)
		return err
	}
	m.log.Info("assignment email sent", "bookingId", e.BookingID, "employeeId", e.EmployeeID)
	return nil
}

func (m *Module) handleRepairStatusChanged(ctx context.Context, e events.RepairStatusChanged) error {
	if e.CustomerEmail == "" {
		return nil
	}
	if err := m.sender.SendStatusUpdateEmail(ctx, e.CustomerEmail, "", e.BookingID, e.NewStatus); err != nil {
		m.log.UpstreamFailure("email", "status update", err)
		return err
	}
	m.log.Info("status update email sent", "bookingId", e.BookingID, "newStatus", e.NewStatus)
	return nil
}

func (m *Module) handleRepairCancelled(ctx context.Context, e events.RepairCancelled) error {
	if e.CustomerEmail == "" {
		return nil
	}
	if err := m.sender.SendCancellationEmail(ctx, e.CustomerEmail, "", e.BookingID); err != nil {
		m.log.UpstreamFailure("email", "cancellation", err)
		return err
	}
	m.log.Info("cancellation email sent", "bookingId", e.BookingID)
	return nil
}

func (m *Module) handleInvoiceSent(ctx context.Context, e events.InvoiceSent) error {
	if e.CustomerEmail == "" {
		return nil
	}
	err := m.sender.SendInvoiceEmail(ctx, e.CustomerEmail, "", e.BookingID,
		toCents(e.FinalCost), toCents(e.AdvancePayment), toCents(e.RemainingAmount))
	if err != nil {
		m.log.UpstreamFailure("email", "invoice", err)
		return err
	}
	m.log.Info("invoice email sent", "bookingId", e.BookingID, "finalCost", e.FinalCost)
	return nil
}

func (m *Module) handleFinalPaymentReceived(ctx context.Context, e events.FinalPaymentReceived) error {
	if e.CustomerEmail == "" {
		return nil
	}
	if err := m.sender.SendPaymentReceiptEmail(ctx, e.CustomerEmail, "", e.BookingID, toCents(e.Amount), e.GatewayRef); err != nil {
		m.log.UpstreamFailure("email", "payment receipt", err)
		return err
	}
	m.log.Info("payment receipt sent", "bookingId", e.BookingID, "paymentId", e.PaymentID)
	return nil
}

// toCents converts whole currency units to cents for template formatting.
func toCents(amount int64) int64 { return amount * 100 }

var _ events.Handler = (*Module)(nil)
