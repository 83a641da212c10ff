// Package domain holds the repair request aggregate and its business rules:
// the status state machine, the role permission matrix and the cost/payment
// reconciliation invariants. Everything here is pure; persistence and
// transport live in the sibling packages.
package domain

// Status is the lifecycle state of a repair request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatuses is the closed set of lifecycle states. Staff may move a
// request between any of these; membership is the only structural guard.
var ValidStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusAssigned:   {},
	StatusInProgress: {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// IsValid reports whether s is a member of the declared status set.
func (s Status) IsValid() bool {
	_, ok := ValidStatuses[s]
	return ok
}

// IsTerminal reports whether the status permits no further lifecycle
// transitions. The payment sub-record may still advance to fully_paid.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentStatus tracks the cost sub-record's reconciliation state.
type PaymentStatus string

const (
	PaymentAdvancePaid PaymentStatus = "advance_paid"
	PaymentInvoiceSent PaymentStatus = "invoice_sent"
	PaymentFullyPaid   PaymentStatus = "fully_paid"
)

// TxStatus is the state of a single ledger transaction.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxSucceeded TxStatus = "succeeded"
	TxFailed    TxStatus = "failed"
)

// Priority labels for staff triage. Not invariant-bearing.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)
