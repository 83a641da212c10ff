package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Welcome aboard",
			Heading: "Welcome aboard",
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, name, bookingID, serviceType, scheduledDate string, advanceCents int64) error {
	subject := fmt.Sprintf(subjectBookingFmt, bookingID)
	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Repair request received",
			Heading: "Repair request received",
		},
		Name:             name,
		BookingID:        bookingID,
		ServiceType:      serviceType,
		ScheduledDate:    scheduledDate,
		AdvanceFormatted: formatCurrencyUSD(advanceCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendAssignmentEmail(ctx context.Context, toEmail, name, bookingID, employeeName string) error {
	subject := fmt.Sprintf(subjectAssignmentFmt, bookingID)
	content, err := renderEmailTemplate("assignment.html", assignmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Technician assigned",
			Heading: "Technician assigned",
		},
		Name:         name,
		BookingID:    bookingID,
		EmployeeName: employeeName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendStatusUpdateEmail(ctx context.Context, toEmail, name, bookingID, newStatus string) error {
	subject := fmt.Sprintf(subjectStatusUpdateFmt, bookingID)
	content, err := renderEmailTemplate("status_update.html", statusUpdateEmailData{
		baseEmailData: baseEmailData{
			Title:   "Status update",
			Heading: "Status update",
		},
		Name:      name,
		BookingID: bookingID,
		NewStatus: newStatus,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCancellationEmail(ctx context.Context, toEmail, name, bookingID string) error {
	subject := fmt.Sprintf(subjectCancellationFmt, bookingID)
	content, err := renderEmailTemplate("cancellation.html", cancellationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking cancelled",
			Heading: "Booking cancelled",
		},
		Name:      name,
		BookingID: bookingID,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendInvoiceEmail(ctx context.Context, toEmail, name, bookingID string, finalCents, advanceCents, remainingCents int64) error {
	subject := fmt.Sprintf(subjectInvoiceFmt, bookingID)
	content, err := renderEmailTemplate("invoice.html", invoiceEmailData{
		baseEmailData: baseEmailData{
			Title:   "Your invoice",
			Heading: "Your invoice",
		},
		Name:               name,
		BookingID:          bookingID,
		FinalFormatted:     formatCurrencyUSD(finalCents),
		AdvanceFormatted:   formatCurrencyUSD(advanceCents),
		RemainingFormatted: formatCurrencyUSD(remainingCents),
		IsCredit:           remainingCents < 0,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendPaymentReceiptEmail(ctx context.Context, toEmail, name, bookingID string, amountCents int64, gatewayRef string) error {
	subject := fmt.Sprintf(subjectPaymentReceiptFmt, bookingID)
	content, err := renderEmailTemplate("payment_receipt.html", paymentReceiptEmailData{
		baseEmailData: baseEmailData{
			Title:   "Payment received",
			Heading: "Payment received",
		},
		Name:            name,
		BookingID:       bookingID,
		AmountFormatted: formatCurrencyUSD(amountCents),
		GatewayRef:      gatewayRef,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendReminderEmail(ctx context.Context, toEmail, name, bookingID, serviceType, scheduledDate string) error {
	subject := fmt.Sprintf(subjectReminderFmt, bookingID)
	content, err := renderEmailTemplate("reminder.html", reminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Upcoming service",
			Heading: "Upcoming service",
		},
		Name:          name,
		BookingID:     bookingID,
		ServiceType:   serviceType,
		ScheduledDate: scheduledDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
