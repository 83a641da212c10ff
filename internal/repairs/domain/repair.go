package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BoatDetails describes the vessel a request concerns. Customer edits merge
// into this record field by field rather than replacing it wholesale.
type BoatDetails struct {
	Make               string  `json:"make,omitempty"`
	Model              string  `json:"model,omitempty"`
	Year               int     `json:"year,omitempty"`
	LengthFt           float64 `json:"lengthFt,omitempty"`
	HullID             string  `json:"hullId,omitempty"`
	Name               string  `json:"name,omitempty"`
	RegistrationNumber string  `json:"registrationNumber,omitempty"`
}

// ServiceLocation is where the work happens: a marina slip or an address.
type ServiceLocation struct {
	Type       string `json:"type,omitempty"` // "marina", "dock", "address", "workshop"
	MarinaName string `json:"marinaName,omitempty"`
	SlipNumber string `json:"slipNumber,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// RepairCosts is the embedded cost sub-record, one per request. All amounts
// are whole currency units. RemainingAmount is derived and must only change
// through Reconcile.
type RepairCosts struct {
	AdvancePayment  int64         `json:"advancePayment"`
	EstimatedCost   *int64        `json:"estimatedCost,omitempty"`
	FinalCost       *int64        `json:"finalCost,omitempty"`
	RemainingAmount *int64        `json:"remainingAmount,omitempty"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	InvoiceSentAt   *time.Time    `json:"invoiceSentAt,omitempty"`
	FinalPaymentAt  *time.Time    `json:"finalPaymentAt,omitempty"`
}

// NewRepairCosts initializes the cost sub-record with the booking-time
// advance payment. The advance is considered collected at creation.
func NewRepairCosts(advancePayment int64) RepairCosts {
	return RepairCosts{
		AdvancePayment: advancePayment,
		PaymentStatus:  PaymentAdvancePaid,
	}
}

// Reconcile recomputes the derived remaining amount from the stored final
// cost. The result may be negative when the advance exceeds the final cost;
// no clamping, no refund flow.
func (c *RepairCosts) Reconcile() {
	if c.FinalCost == nil {
		c.RemainingAmount = nil
		return
	}
	remaining := *c.FinalCost - c.AdvancePayment
	c.RemainingAmount = &remaining
}

// ApplyInvoice sets the final cost, recomputes the balance and moves the
// sub-record to invoice_sent. The invoice timestamp is stamped once.
func (c *RepairCosts) ApplyInvoice(finalCost int64, now time.Time) {
	c.FinalCost = &finalCost
	c.Reconcile()
	c.PaymentStatus = PaymentInvoiceSent
	if c.InvoiceSentAt == nil {
		stamped := now
		c.InvoiceSentAt = &stamped
	}
}

// ApplyFinalPayment marks the sub-record fully paid. The payment timestamp
// is stamped once.
func (c *RepairCosts) ApplyFinalPayment(now time.Time) {
	c.PaymentStatus = PaymentFullyPaid
	if c.FinalPaymentAt == nil {
		stamped := now
		c.FinalPaymentAt = &stamped
	}
}

// Payment is a ledger record of a single gateway transaction tied to a
// booking. GatewayRef is the idempotency key: retried gateway callbacks
// update the existing row in place instead of inserting a duplicate.
type Payment struct {
	ID          uuid.UUID  `json:"paymentId"`
	BookingID   string     `json:"serviceId"`
	GatewayRef  string     `json:"externalTransactionRef"`
	Amount      int64      `json:"amount"`
	AmountCents int64      `json:"amountCents"`
	Status      TxStatus   `json:"status"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// RepairRequest is the aggregate root. The customer owns the descriptive
// payload within edit windows; staff own status, assignment and cost fields.
type RepairRequest struct {
	ID                   uuid.UUID       `json:"id"`
	BookingID            string          `json:"bookingId"`
	CustomerID           uuid.UUID       `json:"customerId"`
	Status               Status          `json:"status"`
	AssignedTechnicianID *uuid.UUID      `json:"assignedTechnicianId,omitempty"`
	AssignedByID         *uuid.UUID      `json:"assignedById,omitempty"`
	AssignedAt           *time.Time      `json:"assignedAt,omitempty"`
	ScheduledAt          *time.Time      `json:"scheduledDateTime,omitempty"`
	ServiceType          string          `json:"serviceType"`
	ProblemDescription   string          `json:"problemDescription"`
	ServiceDescription   string          `json:"serviceDescription,omitempty"`
	BoatDetails          BoatDetails     `json:"boatDetails"`
	Photos               []string        `json:"photos"`
	ServiceLocation      ServiceLocation `json:"serviceLocation"`
	CustomerNotes        string          `json:"customerNotes,omitempty"`
	InternalNotes        string          `json:"internalNotes,omitempty"`
	Priority             string          `json:"priority"`
	WorkPerformed        string          `json:"workPerformed,omitempty"`
	PartsUsed            string          `json:"partsUsed,omitempty"`
	LaborHours           float64         `json:"laborHours,omitempty"`
	LaborRate            int64           `json:"laborRate,omitempty"`
	Costs                RepairCosts     `json:"repairCosts"`
	SchedulingRef        string          `json:"-"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// IsOwnedBy reports whether the given user is the request's customer.
func (r *RepairRequest) IsOwnedBy(userID uuid.UUID) bool {
	return r.CustomerID == userID
}

// IsAssignedTo reports whether the given user is the assigned technician.
func (r *RepairRequest) IsAssignedTo(userID uuid.UUID) bool {
	return r.AssignedTechnicianID != nil && *r.AssignedTechnicianID == userID
}

// EnsureCosts initializes a default cost sub-record if none exists yet.
// Requests predating the cost schema self-heal on first payment touch.
func (r *RepairRequest) EnsureCosts(defaultAdvance int64) {
	if r.Costs.PaymentStatus == "" {
		r.Costs = NewRepairCosts(defaultAdvance)
	}
}

// GenerateBookingID produces the human-facing booking identifier, e.g.
// "BR-20260901-4F2A9C". Distinct from the internal UUID.
func GenerateBookingID(now time.Time) (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate booking id: %w", err)
	}
	return fmt.Sprintf("BR-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix))), nil
}
