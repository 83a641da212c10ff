package domain

import (
	"errors"
	"testing"
	"time"
)

func TestWithinCancellationWindow_Boundaries(t *testing.T) {
	now := time.Now()

	unscheduled := (*time.Time)(nil)
	if !WithinCancellationWindow(unscheduled, now) {
		t.Fatalf("expected cancellation allowed with no scheduled time")
	}

	at73h := now.Add(73 * time.Hour)
	if !WithinCancellationWindow(&at73h, now) {
		t.Fatalf("expected cancellation allowed 73h ahead")
	}

	at72h := now.Add(72 * time.Hour)
	if WithinCancellationWindow(&at72h, now) {
		t.Fatalf("expected cancellation blocked exactly 72h ahead")
	}

	past := now.Add(-time.Hour)
	if WithinCancellationWindow(&past, now) {
		t.Fatalf("expected cancellation blocked after scheduled time")
	}
}

func TestWithinEditWindow(t *testing.T) {
	now := time.Now()

	if !WithinEditWindow(nil, now) {
		t.Fatalf("expected edits allowed with no scheduled time")
	}

	future := now.Add(time.Minute)
	if !WithinEditWindow(&future, now) {
		t.Fatalf("expected edits allowed before scheduled time")
	}

	if WithinEditWindow(&now, now) {
		t.Fatalf("expected edits blocked at scheduled time")
	}
}

func TestCanCancel_TerminalStates(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusAssigned, StatusInProgress} {
		req := &RepairRequest{Status: status}
		if err := CanCancel(req); err != nil {
			t.Fatalf("expected %s cancellable, got %v", status, err)
		}
	}

	for _, status := range []Status{StatusCompleted, StatusCancelled} {
		req := &RepairRequest{Status: status}
		if err := CanCancel(req); !errors.Is(err, ErrAlreadyTerminal) {
			t.Fatalf("expected AlreadyTerminal for %s, got %v", status, err)
		}
	}
}

func TestCanCustomerEdit(t *testing.T) {
	if err := CanCustomerEdit(&RepairRequest{Status: StatusCancelled}); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected edit rejected on cancelled request, got %v", err)
	}

	// Completed requests stay editable for the customer's own fields.
	for _, status := range []Status{StatusPending, StatusAssigned, StatusInProgress, StatusCompleted} {
		if err := CanCustomerEdit(&RepairRequest{Status: status}); err != nil {
			t.Fatalf("expected edit allowed on %s, got %v", status, err)
		}
	}
}

func TestValidateStaffStatus(t *testing.T) {
	for status := range ValidStatuses {
		if err := ValidateStaffStatus(status); err != nil {
			t.Fatalf("expected %s valid, got %v", status, err)
		}
	}
	if err := ValidateStaffStatus(Status("shipped")); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestCanRecordFinalPayment(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusAssigned, StatusInProgress, StatusCancelled} {
		req := &RepairRequest{Status: status, Costs: NewRepairCosts(5000)}
		if err := CanRecordFinalPayment(req); !errors.Is(err, ErrNotCompleted) {
			t.Fatalf("expected NotCompleted for %s, got %v", status, err)
		}
	}

	req := &RepairRequest{Status: StatusCompleted, Costs: NewRepairCosts(5000)}
	if err := CanRecordFinalPayment(req); err != nil {
		t.Fatalf("expected payment allowed on completed unpaid request, got %v", err)
	}

	req.Costs.PaymentStatus = PaymentFullyPaid
	if err := CanRecordFinalPayment(req); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected AlreadyPaid on fully paid request, got %v", err)
	}
}
