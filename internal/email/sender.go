// Package email delivers transactional mail for the workshop portal.
package email

import (
	"context"

	"boatyard_backend/platform/config"
)

// NewSender builds the configured sender: SMTP when email delivery is
// enabled, a no-op otherwise.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender is the outbound email port. Implementations render templates and
// deliver them; callers treat delivery as best-effort.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendBookingConfirmationEmail(ctx context.Context, toEmail, name, bookingID, serviceType, scheduledDate string, advanceCents int64) error
	SendAssignmentEmail(ctx context.Context, toEmail, name, bookingID, employeeName string) error
	SendStatusUpdateEmail(ctx context.Context, toEmail, name, bookingID, newStatus string) error
	SendCancellationEmail(ctx context.Context, toEmail, name, bookingID string) error
	SendInvoiceEmail(ctx context.Context, toEmail, name, bookingID string, finalCents, advanceCents, remainingCents int64) error
	SendPaymentReceiptEmail(ctx context.Context, toEmail, name, bookingID string, amountCents int64, gatewayRef string) error
	SendReminderEmail(ctx context.Context, toEmail, name, bookingID, serviceType, scheduledDate string) error
}

// NoopSender drops all mail. Used when email delivery is disabled in config.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(context.Context, string, string) error { return nil }
func (NoopSender) SendBookingConfirmationEmail(context.Context, string, string, string, string, string, int64) error {
	return nil
}
func (NoopSender) SendAssignmentEmail(context.Context, string, string, string, string) error {
	return nil
}
func (NoopSender) SendStatusUpdateEmail(context.Context, string, string, string, string) error {
	return nil
}
func (NoopSender) SendCancellationEmail(context.Context, string, string, string) error { return nil }
func (NoopSender) SendInvoiceEmail(context.Context, string, string, string, int64, int64, int64) error {
	return nil
}
func (NoopSender) SendPaymentReceiptEmail(context.Context, string, string, string, int64, string) error {
	return nil
}
func (NoopSender) SendReminderEmail(context.Context, string, string, string, string, string) error {
	return nil
}
