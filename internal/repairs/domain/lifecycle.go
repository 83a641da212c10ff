package domain

import (
	"errors"
	"time"
)

// CancellationNotice is how far ahead of the scheduled appointment a
// customer may still cancel or delete a request.
const CancellationNotice = 72 * time.Hour

var (
	// ErrAlreadyTerminal rejects lifecycle transitions on completed or
	// cancelled requests.
	ErrAlreadyTerminal = errors.New("repair request is already completed or cancelled")
	// ErrUnknownStatus rejects status values outside the declared set.
	ErrUnknownStatus = errors.New("unknown repair status")
	// ErrInvalidAssignee rejects assignment of a user without a staff role.
	ErrInvalidAssignee = errors.New("assigned technician must be a staff member")
	// ErrNotCompleted rejects final payment on a request that is not completed.
	ErrNotCompleted = errors.New("repair request is not completed")
	// ErrAlreadyPaid rejects final payment on a fully paid request.
	ErrAlreadyPaid = errors.New("final payment has already been recorded")
)

// WithinCancellationWindow reports whether a customer cancellation or
// deletion is still allowed at the given time. With no scheduled
// appointment, cancellation is unconditionally allowed.
func WithinCancellationWindow(scheduledAt *time.Time, now time.Time) bool {
	if scheduledAt == nil {
		return true
	}
	return now.Before(scheduledAt.Add(-CancellationNotice))
}

// WithinEditWindow reports whether customer edits are still allowed. Edits
// close at the scheduled appointment time itself, not 72 hours before.
func WithinEditWindow(scheduledAt *time.Time, now time.Time) bool {
	if scheduledAt == nil {
		return true
	}
	return now.Before(*scheduledAt)
}

// CanCancel guards the transition to cancelled. Time-window gating is the
// policy's concern; this guard only rejects requests already terminal.
func CanCancel(req *RepairRequest) error {
	if req.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	return nil
}

// CanCustomerEdit guards customer field edits. A cancelled request takes no
// further edits; completed requests remain editable, matching the lifecycle's
// permissiveness for post-completion note corrections.
func CanCustomerEdit(req *RepairRequest) error {
	if req.Status == StatusCancelled {
		return ErrAlreadyTerminal
	}
	return nil
}

// ValidateStaffStatus accepts any member of the declared status set. Staff
// may reorder states freely; only unknown values are rejected.
func ValidateStaffStatus(s Status) error {
	if !s.IsValid() {
		return ErrUnknownStatus
	}
	return nil
}

// CanRecordFinalPayment guards the payment application. It must be
// evaluated inside the same transaction that writes the ledger so two
// concurrent gateway callbacks cannot both observe an unpaid request.
func CanRecordFinalPayment(req *RepairRequest) error {
	if req.Status != StatusCompleted {
		return ErrNotCompleted
	}
	if req.Costs.PaymentStatus == PaymentFullyPaid {
		return ErrAlreadyPaid
	}
	return nil
}
