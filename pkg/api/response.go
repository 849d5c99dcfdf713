// Package api holds the small shared response vocabulary of the HTTP layer.
// Handlers stay thin: they decode, validate, call a service and map its
// tagged outcome onto exactly one status code.
package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/davidemioma/go-jwt-auth/pkg/validation"
)

// MessageResponse is the body of a successful operation
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of a failed operation
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse lists the field issues of a rejected request
type ValidationErrorResponse struct {
	Error  string                  `json:"error"`
	Issues []validation.FieldIssue `json:"issues"`
}

// Message writes a MessageResponse with the given status
func Message(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, MessageResponse{Message: message})
}

// Error writes an ErrorResponse with the given status
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// ValidationFailed writes a 400 carrying the field issues
func ValidationFailed(w http.ResponseWriter, r *http.Request, result validation.Result) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ValidationErrorResponse{
		Error:  "Invalid request",
		Issues: result.Issues,
	})
}
