// Package repository provides database operations for repair requests and
// their payment ledger.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boatyard_backend/internal/repairs/domain"
	"boatyard_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repairNotFoundMsg = "repair request not found"

const repairColumns = `id, booking_id, customer_id, status, assigned_technician_id, assigned_by_id,
	assigned_at, scheduled_at, service_type, problem_description, service_description,
	boat_details, photos, service_location, customer_notes, internal_notes, priority,
	work_performed, parts_used, labor_hours, labor_rate,
	advance_payment, estimated_cost, final_cost, remaining_amount, payment_status,
	invoice_sent_at, final_payment_at, scheduling_ref, created_at, updated_at`

// Repository provides database operations for repair requests.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new repairs repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepair(row rowScanner) (*domain.RepairRequest, error) {
	var req domain.RepairRequest
	var boatDetails, photos, serviceLocation []byte

	err := row.Scan(
		&req.ID, &req.BookingID, &req.CustomerID, &req.Status, &req.AssignedTechnicianID,
		&req.AssignedByID, &req.AssignedAt, &req.ScheduledAt, &req.ServiceType,
		&req.ProblemDescription, &req.ServiceDescription,
		&boatDetails, &photos, &serviceLocation,
		&req.CustomerNotes, &req.InternalNotes, &req.Priority,
		&req.WorkPerformed, &req.PartsUsed, &req.LaborHours, &req.LaborRate,
		&req.Costs.AdvancePayment, &req.Costs.EstimatedCost, &req.Costs.FinalCost,
		&req.Costs.RemainingAmount, &req.Costs.PaymentStatus,
		&req.Costs.InvoiceSentAt, &req.Costs.FinalPaymentAt,
		&req.SchedulingRef, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(boatDetails) > 0 {
		if err := json.Unmarshal(boatDetails, &req.BoatDetails); err != nil {
			return nil, fmt.Errorf("decode boat details: %w", err)
		}
	}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &req.Photos); err != nil {
			return nil, fmt.Errorf("decode photos: %w", err)
		}
	}
	if req.Photos == nil {
		req.Photos = []string{}
	}
	if len(serviceLocation) > 0 {
		if err := json.Unmarshal(serviceLocation, &req.ServiceLocation); err != nil {
			return nil, fmt.Errorf("decode service location: %w", err)
		}
	}

	return &req, nil
}

func encodeRepair(req *domain.RepairRequest) (boatDetails, photos, serviceLocation []byte, err error) {
	boatDetails, err = json.Marshal(req.BoatDetails)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode boat details: %w", err)
	}
	if req.Photos == nil {
		req.Photos = []string{}
	}
	photos, err = json.Marshal(req.Photos)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode photos: %w", err)
	}
	serviceLocation, err = json.Marshal(req.ServiceLocation)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode service location: %w", err)
	}
	return boatDetails, photos, serviceLocation, nil
}

// Create inserts a new repair request.
func (r *Repository) Create(ctx context.Context, req *domain.RepairRequest) error {
	boatDetails, photos, serviceLocation, err := encodeRepair(req)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO repair_requests (
			id, booking_id, customer_id, status, assigned_technician_id, assigned_by_id,
			assigned_at, scheduled_at, service_type, problem_description, service_description,
			boat_details, photos, service_location, customer_notes, internal_notes, priority,
			work_performed, parts_used, labor_hours, labor_rate,
			advance_payment, estimated_cost, final_cost, remaining_amount, payment_status,
			invoice_sent_at, final_payment_at, scheduling_ref, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31
		)`

	_, err = r.pool.Exec(ctx, query,
		req.ID, req.BookingID, req.CustomerID, req.Status, req.AssignedTechnicianID,
		req.AssignedByID, req.AssignedAt, req.ScheduledAt, req.ServiceType,
		req.ProblemDescription, req.ServiceDescription,
		boatDetails, photos, serviceLocation,
		req.CustomerNotes, req.InternalNotes, req.Priority,
		req.WorkPerformed, req.PartsUsed, req.LaborHours, req.LaborRate,
		req.Costs.AdvancePayment, req.Costs.EstimatedCost, req.Costs.FinalCost,
		req.Costs.RemainingAmount, req.Costs.PaymentStatus,
		req.Costs.InvoiceSentAt, req.Costs.FinalPaymentAt,
		req.SchedulingRef, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create repair request: %w", err)
	}

	return nil
}

// GetByID retrieves a repair request by its internal ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairRequest, error) {
	query := `SELECT ` + repairColumns + ` FROM repair_requests WHERE id = $1`

	req, err := scanRepair(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(repairNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get repair request: %w", err)
	}

	return req, nil
}

// GetByBookingID retrieves a repair request by its human-facing booking ID.
func (r *Repository) GetByBookingID(ctx context.Context, bookingID string) (*domain.RepairRequest, error) {
	query := `SELECT ` + repairColumns + ` FROM repair_requests WHERE booking_id = $1`

	req, err := scanRepair(r.pool.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(repairNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get repair request: %w", err)
	}

	return req, nil
}

// ListParams controls filtering and paging for List.
type ListParams struct {
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	Status       *string
	Limit        int
	Offset       int
}

// List returns repair requests matching the filters, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.RepairRequest, error) {
	baseQuery := `SELECT ` + repairColumns + ` FROM repair_requests WHERE 1=1`
	args := []interface{}{}
	argIndex := 0

	addFilter(&baseQuery, &args, &argIndex, params.CustomerID != nil, " AND customer_id = $%d", derefUUID(params.CustomerID))
	addFilter(&baseQuery, &args, &argIndex, params.TechnicianID != nil, " AND assigned_technician_id = $%d", derefUUID(params.TechnicianID))
	addFilter(&baseQuery, &args, &argIndex, params.Status != nil, " AND status = $%d", derefString(params.Status))

	baseQuery += " ORDER BY created_at DESC"
	addFilter(&baseQuery, &args, &argIndex, params.Limit > 0, " LIMIT $%d", params.Limit)
	addFilter(&baseQuery, &args, &argIndex, params.Offset > 0, " OFFSET $%d", params.Offset)

	rows, err := r.pool.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.RepairRequest, 0)
	for rows.Next() {
		req, err := scanRepair(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repair request: %w", err)
		}
		requests = append(requests, *req)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return requests, nil
}

// Update persists the full aggregate. Merging of partial patches happens in
// the service layer; the repository writes the resulting state.
func (r *Repository) Update(ctx context.Context, req *domain.RepairRequest) error {
	boatDetails, photos, serviceLocation, err := encodeRepair(req)
	if err != nil {
		return err
	}

	query := `
		UPDATE repair_requests SET
			status = $2,
			assigned_technician_id = $3,
			assigned_by_id = $4,
			assigned_at = $5,
			scheduled_at = $6,
			service_type = $7,
			problem_description = $8,
			service_description = $9,
			boat_details = $10,
			photos = $11,
			service_location = $12,
			customer_notes = $13,
			internal_notes = $14,
			priority = $15,
			work_performed = $16,
			parts_used = $17,
			labor_hours = $18,
			labor_rate = $19,
			estimated_cost = $20,
			final_cost = $21,
			remaining_amount = $22,
			payment_status = $23,
			invoice_sent_at = $24,
			final_payment_at = $25,
			scheduling_ref = $26,
			updated_at = $27
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		req.ID, req.Status, req.AssignedTechnicianID, req.AssignedByID, req.AssignedAt,
		req.ScheduledAt, req.ServiceType, req.ProblemDescription, req.ServiceDescription,
		boatDetails, photos, serviceLocation,
		req.CustomerNotes, req.InternalNotes, req.Priority,
		req.WorkPerformed, req.PartsUsed, req.LaborHours, req.LaborRate,
		req.Costs.EstimatedCost, req.Costs.FinalCost, req.Costs.RemainingAmount,
		req.Costs.PaymentStatus, req.Costs.InvoiceSentAt, req.Costs.FinalPaymentAt,
		req.SchedulingRef, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update repair request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(repairNotFoundMsg)
	}

	return nil
}

// Delete removes a repair request and, via cascade, its ledger rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM repair_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete repair request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(repairNotFoundMsg)
	}

	return nil
}

func addFilter(baseQuery *string, args *[]interface{}, argIndex *int, apply bool, clause string, value interface{}) {
	if !apply {
		return
	}
	*args = append(*args, value)
	*argIndex++
	*baseQuery += fmt.Sprintf(clause, *argIndex)
}

func derefUUID(v *uuid.UUID) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func derefString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
