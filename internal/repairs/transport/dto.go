// Package transport defines the request and response shapes for the repairs API.
package transport

import (
	"time"

	"boatyard_backend/internal/repairs/domain"
)

type BoatDetailsInput struct {
	Make               string  `json:"make" validate:"max=80"`
	Model              string  `json:"model" validate:"max=80"`
	Year               int     `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	LengthFt           float64 `json:"lengthFt" validate:"omitempty,gt=0,lte=500"`
	HullID             string  `json:"hullId" validate:"max=40"`
	Name               string  `json:"name" validate:"max=120"`
	RegistrationNumber string  `json:"registrationNumber" validate:"max=40"`
}

type ServiceLocationInput struct {
	Type       string `json:"type" validate:"omitempty,oneof=marina dock address workshop"`
	MarinaName string `json:"marinaName" validate:"max=120"`
	SlipNumber string `json:"slipNumber" validate:"max=20"`
	Address    string `json:"address" validate:"max=200"`
	City       string `json:"city" validate:"max=80"`
	State      string `json:"state" validate:"max=80"`
	PostalCode string `json:"postalCode" validate:"max=20"`
}

type CreateRepairRequest struct {
	ServiceType        string               `json:"serviceType" validate:"required,max=80"`
	ProblemDescription string               `json:"problemDescription" validate:"required,max=4000"`
	ServiceDescription string               `json:"serviceDescription" validate:"max=4000"`
	BoatDetails        BoatDetailsInput     `json:"boatDetails"`
	Photos             []string             `json:"photos" validate:"omitempty,max=20,dive,url"`
	ScheduledDateTime  *time.Time           `json:"scheduledDateTime"`
	ServiceLocation    ServiceLocationInput `json:"serviceLocation"`
	CustomerNotes      string               `json:"customerNotes" validate:"max=2000"`
}

// StaffUpdateRequest patches staff-owned fields. Nil fields are untouched.
type StaffUpdateRequest struct {
	Status             *string  `json:"status" validate:"omitempty,max=40"`
	AssignedTechnician *string  `json:"assignedTechnician" validate:"omitempty,uuid"`
	EstimatedCost      *int64   `json:"estimatedCost" validate:"omitempty,gte=0"`
	FinalCost          *int64   `json:"finalCost" validate:"omitempty,gte=0"`
	InternalNotes      *string  `json:"internalNotes" validate:"omitempty,max=4000"`
	Priority           *string  `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	WorkPerformed      *string  `json:"workPerformed" validate:"omitempty,max=4000"`
	PartsUsed          *string  `json:"partsUsed" validate:"omitempty,max=4000"`
	LaborHours         *float64 `json:"laborHours" validate:"omitempty,gte=0"`
	LaborRate          *int64   `json:"laborRate" validate:"omitempty,gte=0"`
}

// BoatDetailsPatch merges into the stored boat details field by field.
type BoatDetailsPatch struct {
	Make               *string  `json:"make" validate:"omitempty,max=80"`
	Model              *string  `json:"model" validate:"omitempty,max=80"`
	Year               *int     `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	LengthFt           *float64 `json:"lengthFt" validate:"omitempty,gt=0,lte=500"`
	HullID             *string  `json:"hullId" validate:"omitempty,max=40"`
	Name               *string  `json:"name" validate:"omitempty,max=120"`
	RegistrationNumber *string  `json:"registrationNumber" validate:"omitempty,max=40"`
}

// ServiceLocationPatch merges into the stored service location field by field.
type ServiceLocationPatch struct {
	Type       *string `json:"type" validate:"omitempty,oneof=marina dock address workshop"`
	MarinaName *string `json:"marinaName" validate:"omitempty,max=120"`
	SlipNumber *string `json:"slipNumber" validate:"omitempty,max=20"`
	Address    *string `json:"address" validate:"omitempty,max=200"`
	City       *string `json:"city" validate:"omitempty,max=80"`
	State      *string `json:"state" validate:"omitempty,max=80"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=20"`
}

// CustomerEditRequest patches customer-owned fields within the edit window.
type CustomerEditRequest struct {
	ProblemDescription *string               `json:"problemDescription" validate:"omitempty,max=4000"`
	ServiceDescription *string               `json:"serviceDescription" validate:"omitempty,max=4000"`
	BoatDetails        *BoatDetailsPatch     `json:"boatDetails"`
	Photos             *[]string             `json:"photos" validate:"omitempty,max=20,dive,url"`
	ServiceLocation    *ServiceLocationPatch `json:"serviceLocation"`
	CustomerNotes      *string               `json:"customerNotes" validate:"omitempty,max=2000"`
}

type SendInvoiceRequest struct {
	FinalCost int64 `json:"finalCost" validate:"required,gt=0"`
}

type RecordFinalPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required,max=200"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
}

// UserRef is a compact user projection embedded in staff list responses.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// RepairResponse is the API view of a repair request.
type RepairResponse struct {
	domain.RepairRequest
	Customer   *UserRef `json:"customer,omitempty"`
	Technician *UserRef `json:"technician,omitempty"`
}

// CreateRepairResponse echoes the booking ID at the top level alongside the
// created request.
type CreateRepairResponse struct {
	BookingID string         `json:"bookingId"`
	Request   RepairResponse `json:"request"`
}

// PaymentResponse is the API view of a ledger record.
type PaymentResponse struct {
	PaymentID              string     `json:"paymentId"`
	ServiceID              string     `json:"serviceId"`
	ExternalTransactionRef string     `json:"externalTransactionRef"`
	Amount                 int64      `json:"amount"`
	AmountCents            int64      `json:"amountCents"`
	Status                 string     `json:"status"`
	PaidAt                 *time.Time `json:"paidAt,omitempty"`
}
