package domain

import (
	"strings"
	"testing"
	"time"
)

func TestApplyInvoice_ReconcilesRemainingAmount(t *testing.T) {
	costs := NewRepairCosts(5000)
	now := time.Now()

	costs.ApplyInvoice(20000, now)

	if costs.FinalCost == nil || *costs.FinalCost != 20000 {
		t.Fatalf("expected final cost 20000, got %v", costs.FinalCost)
	}
	if costs.RemainingAmount == nil || *costs.RemainingAmount != 15000 {
		t.Fatalf("expected remaining 15000, got %v", costs.RemainingAmount)
	}
	if costs.PaymentStatus != PaymentInvoiceSent {
		t.Fatalf("expected payment status invoice_sent, got %s", costs.PaymentStatus)
	}
	if costs.InvoiceSentAt == nil {
		t.Fatalf("expected invoiceSentAt to be stamped")
	}
}

func TestApplyInvoice_NegativeRemainingPreserved(t *testing.T) {
	costs := NewRepairCosts(5000)

	costs.ApplyInvoice(3000, time.Now())

	if costs.RemainingAmount == nil || *costs.RemainingAmount != -2000 {
		t.Fatalf("expected remaining -2000 when advance exceeds final cost, got %v", costs.RemainingAmount)
	}
}

func TestApplyInvoice_TimestampStampedOnce(t *testing.T) {
	costs := NewRepairCosts(5000)
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	costs.ApplyInvoice(10000, first)
	costs.ApplyInvoice(12000, second)

	if costs.InvoiceSentAt == nil || !costs.InvoiceSentAt.Equal(first) {
		t.Fatalf("expected invoiceSentAt to keep first stamp %v, got %v", first, costs.InvoiceSentAt)
	}
	if costs.RemainingAmount == nil || *costs.RemainingAmount != 7000 {
		t.Fatalf("expected remaining recomputed to 7000, got %v", costs.RemainingAmount)
	}
}

func TestReconcile_NoFinalCostClearsRemaining(t *testing.T) {
	costs := NewRepairCosts(5000)
	remaining := int64(123)
	costs.RemainingAmount = &remaining

	costs.Reconcile()

	if costs.RemainingAmount != nil {
		t.Fatalf("expected remaining cleared without final cost, got %v", *costs.RemainingAmount)
	}
}

func TestApplyFinalPayment(t *testing.T) {
	costs := NewRepairCosts(5000)
	costs.ApplyInvoice(20000, time.Now())

	paidAt := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	costs.ApplyFinalPayment(paidAt)

	if costs.PaymentStatus != PaymentFullyPaid {
		t.Fatalf("expected fully_paid, got %s", costs.PaymentStatus)
	}
	if costs.FinalPaymentAt == nil || !costs.FinalPaymentAt.Equal(paidAt) {
		t.Fatalf("expected finalPaymentAt %v, got %v", paidAt, costs.FinalPaymentAt)
	}

	costs.ApplyFinalPayment(paidAt.Add(time.Hour))
	if !costs.FinalPaymentAt.Equal(paidAt) {
		t.Fatalf("expected finalPaymentAt to keep first stamp")
	}
}

func TestEnsureCosts_SelfHeals(t *testing.T) {
	req := &RepairRequest{Status: StatusCompleted}

	req.EnsureCosts(5000)

	if req.Costs.AdvancePayment != 5000 || req.Costs.PaymentStatus != PaymentAdvancePaid {
		t.Fatalf("expected default cost record, got %+v", req.Costs)
	}

	// An existing record is left alone.
	req.Costs.ApplyInvoice(9000, time.Now())
	req.EnsureCosts(5000)
	if req.Costs.PaymentStatus != PaymentInvoiceSent {
		t.Fatalf("expected existing cost record preserved, got %+v", req.Costs)
	}
}

func TestGenerateBookingID(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	id, err := GenerateBookingID(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(id, "BR-20260901-") {
		t.Fatalf("unexpected booking id format: %s", id)
	}
	if len(id) != len("BR-20260901-")+6 {
		t.Fatalf("unexpected booking id length: %s", id)
	}

	other, err := GenerateBookingID(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == id {
		t.Fatalf("expected distinct booking ids, got %s twice", id)
	}
}
