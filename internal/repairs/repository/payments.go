package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boatyard_backend/internal/repairs/domain"
	"boatyard_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApplyFinalPayment records the final payment for a booking atomically.
//
// The repair row is locked with SELECT ... FOR UPDATE so the completed/unpaid
// guard and the ledger upsert commit as one unit: two concurrent gateway
// callbacks for the same booking serialize on the row lock, and the loser
// re-reads a fully paid request. The ledger upsert is keyed on the gateway's
// transaction reference, so a retried callback updates the existing row
// instead of inserting a duplicate.
func (r *Repository) ApplyFinalPayment(ctx context.Context, bookingID, gatewayRef string, amount, defaultAdvance int64, now time.Time) (*domain.RepairRequest, *domain.Payment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `SELECT ` + repairColumns + ` FROM repair_requests WHERE booking_id = $1 FOR UPDATE`
	req, err := scanRepair(tx.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound(repairNotFoundMsg)
		}
		return nil, nil, fmt.Errorf("failed to lock repair request: %w", err)
	}

	req.EnsureCosts(defaultAdvance)

	if err := domain.CanRecordFinalPayment(req); err != nil {
		return nil, nil, err
	}

	payment := domain.Payment{
		ID:          uuid.New(),
		BookingID:   bookingID,
		GatewayRef:  gatewayRef,
		Amount:      amount,
		AmountCents: amount * 100,
		Status:      domain.TxSucceeded,
		PaidAt:      &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Upsert by gateway reference: a retried callback flips the existing
	// ledger row to succeeded rather than creating a second one.
	err = tx.QueryRow(ctx, `
		INSERT INTO repair_payments (id, booking_id, external_transaction_ref, amount, amount_cents, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_transaction_ref) DO UPDATE
		SET status = EXCLUDED.status,
			amount = EXCLUDED.amount,
			amount_cents = EXCLUDED.amount_cents,
			paid_at = EXCLUDED.paid_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, payment.ID, payment.BookingID, payment.GatewayRef, payment.Amount, payment.AmountCents,
		payment.Status, payment.PaidAt, payment.CreatedAt, payment.UpdatedAt,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upsert payment: %w", err)
	}

	req.Costs.ApplyFinalPayment(now)

	result, err := tx.Exec(ctx, `
		UPDATE repair_requests SET
			advance_payment = $2,
			payment_status = $3,
			final_payment_at = $4,
			updated_at = $5
		WHERE booking_id = $1
	`, bookingID, req.Costs.AdvancePayment, req.Costs.PaymentStatus, req.Costs.FinalPaymentAt, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, nil, apperr.NotFound(repairNotFoundMsg)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}

	req.UpdatedAt = now
	return req, &payment, nil
}

// ListPayments returns the ledger rows for a booking, newest first.
func (r *Repository) ListPayments(ctx context.Context, bookingID string) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, external_transaction_ref, amount, amount_cents, status, paid_at, created_at, updated_at
		FROM repair_payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.GatewayRef, &p.Amount, &p.AmountCents, &p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return payments, nil
}
