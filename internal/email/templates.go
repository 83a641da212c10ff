package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type welcomeEmailData struct {
	baseEmailData
	Name string
}

type bookingConfirmationEmailData struct {
	baseEmailData
	Name             string
	BookingID        string
	ServiceType      string
	ScheduledDate    string
	AdvanceFormatted string
}

type assignmentEmailData struct {
	baseEmailData
	Name         string
	BookingID    string
	EmployeeName string
}

type statusUpdateEmailData struct {
	baseEmailData
	Name      string
	BookingID string
	NewStatus string
}

type cancellationEmailData struct {
	baseEmailData
	Name      string
	BookingID string
}

type invoiceEmailData struct {
	baseEmailData
	Name               string
	BookingID          string
	FinalFormatted     string
	AdvanceFormatted   string
	RemainingFormatted string
	IsCredit           bool
}

type paymentReceiptEmailData struct {
	baseEmailData
	Name            string
	BookingID       string
	AmountFormatted string
	GatewayRef      string
}

type reminderEmailData struct {
	baseEmailData
	Name          string
	BookingID     string
	ServiceType   string
	ScheduledDate string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyUSD(cents int64) string {
	if cents < 0 {
		return fmt.Sprintf("-$%.2f", float64(-cents)/100)
	}
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
