package service

import (
	"context"

	"boatyard_backend/internal/events"
	"boatyard_backend/internal/repairs/domain"
)

// SendInvoice issues the final invoice for a booking: sets the final cost,
// reconciles the remaining balance and moves the payment status to
// invoice_sent. Re-issuing recomputes the balance but keeps the original
// invoice timestamp.
func (s *Service) SendInvoice(ctx context.Context, actor domain.Actor, bookingID string, finalCost int64) (*domain.RepairRequest, error) {
	now := s.now()
	if d := domain.CanPerform(actor, nil, domain.ActionSendInvoice, now); !d.Allowed {
		return nil, denialError(d)
	}

	req, err := s.store.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	req.EnsureCosts(s.billing.GetAdvancePaymentAmount())
	req.Costs.ApplyInvoice(finalCost, now)

	if err := s.store.Update(ctx, req); err != nil {
		return nil, err
	}

	customer := s.resolveUser(ctx, req.CustomerID)
	s.bus.Publish(ctx, events.InvoiceSent{
		BaseEvent:       events.NewBaseEvent(),
		RequestID:       req.ID,
		BookingID:       req.BookingID,
		CustomerID:      req.CustomerID,
		CustomerEmail:   customer.Email,
		FinalCost:       finalCost,
		AdvancePayment:  req.Costs.AdvancePayment,
		RemainingAmount: derefInt64(req.Costs.RemainingAmount),
	})

	return req, nil
}

// RecordFinalPayment settles the remaining balance for a completed booking.
// The guard-and-write runs in a single transaction in the store, keyed on
// the gateway transaction reference, so concurrent or retried gateway
// callbacks settle exactly once.
func (s *Service) RecordFinalPayment(ctx context.Context, actor domain.Actor, bookingID, gatewayRef string, amount int64) (*domain.RepairRequest, *domain.Payment, error) {
	now := s.now()
	if d := domain.CanPerform(actor, nil, domain.ActionRecordPayment, now); !d.Allowed {
		return nil, nil, denialError(d)
	}

	req, payment, err := s.store.ApplyFinalPayment(ctx, bookingID, gatewayRef, amount, s.billing.GetAdvancePaymentAmount(), now)
	if err != nil {
		return nil, nil, lifecycleError(err)
	}

	customer := s.resolveUser(ctx, req.CustomerID)
	s.bus.Publish(ctx, events.FinalPaymentReceived{
		BaseEvent:     events.NewBaseEvent(),
		RequestID:     req.ID,
		BookingID:     req.BookingID,
		CustomerID:    req.CustomerID,
		CustomerEmail: customer.Email,
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		GatewayRef:    payment.GatewayRef,
	})

	return req, payment, nil
}

// ListPayments returns the ledger for a booking to staff or the owner.
func (s *Service) ListPayments(ctx context.Context, actor domain.Actor, bookingID string) ([]domain.Payment, error) {
	req, err := s.store.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if d := domain.CanPerform(actor, req, domain.ActionViewOne, s.now()); !d.Allowed {
		return nil, denialError(d)
	}

	return s.store.ListPayments(ctx, bookingID)
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
