// Package ports defines consumer-driven interfaces the repairs domain needs
// from other bounded contexts. Implementations live in the providing domain
// (auth adapters, scheduler, scheduling client) and are wired in main.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserInfo is the minimal user projection the repairs domain works with.
type UserInfo struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

// UserProvider resolves basic user information for customers.
type UserProvider interface {
	GetUserInfo(ctx context.Context, userID uuid.UUID) (UserInfo, error)
}

// StaffDirectory resolves workshop staff for assignment checks.
type StaffDirectory interface {
	// IsEmployee reports whether the user holds the employee role.
	IsEmployee(ctx context.Context, userID uuid.UUID) (bool, error)
}

// ReminderScheduler enqueues and cancels service-visit reminders.
type ReminderScheduler interface {
	// ScheduleReminder enqueues a reminder to fire before the scheduled visit.
	ScheduleReminder(ctx context.Context, bookingID string, scheduledAt time.Time) error
	// CancelReminder removes any pending reminder for the booking.
	CancelReminder(ctx context.Context, bookingID string) error
}

// BookingCanceller releases a slot held in the external scheduling system.
// Failures are treated as best-effort by callers.
type BookingCanceller interface {
	CancelBooking(ctx context.Context, bookingID string) error
}
