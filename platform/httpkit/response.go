// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"boatyard_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// Envelope is the standard success response format.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
}

// OK sends a 200 OK response with the given payload wrapped in the envelope.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: payload})
}

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: payload})
}

// Message sends a 200 OK response with a message and optional payload.
func Message(c *gin.Context, message string, payload interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: payload})
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Success: false, Message: message, Error: details})
}

// HandleError maps domain errors to HTTP responses.
// If the error is a typed *apperr.Error, it uses the error's Kind to determine
// the HTTP status code. Otherwise, it defaults to 500 Internal Server Error so
// unexpected persistence failures never masquerade as client errors.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Success: false,
			Message: domainErr.Message,
			Error:   domainErr.Details,
		})
		return true
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Message: "internal server error"})
	return true
}
