// Package response defines the JSON envelope shared by every API endpoint.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	EmptyRequestBodyResponse       = ErrorResponse("Request body is empty. Please provide necessary data.")
	BadRequestResponse             = ErrorResponse("Invalid request body. Please check the data you are sending.")
	AuthenticationRequiredResponse = ErrorResponse("Log in to your account to use TinyApp.")
	InvalidCredentialsResponse     = ErrorResponse("Invalid email or password.")
	LinkNotOwnedResponse           = ErrorResponse("The link is not registered to this account.")
	ResourceNotFoundResponse       = ErrorResponse("The requested resource was not found.")
	AccountExistsResponse          = ErrorResponse("An account with this email is already registered.")
	ServerErrorResponse            = ErrorResponse("An internal server error occurred. Please try again later.")
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

func ErrorResponse(msg string, details ...any) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
		Details: details,
	}
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationErrorResponse converts validator errors into a response whose
// details name each offending field. Non-validator errors fall back to a
// plain bad request response.
func ValidationErrorResponse(err error) Response {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return BadRequestResponse
	}

	details := make([]any, 0, len(validationErrs))

	for _, e := range validationErrs {
		detail := ValidationError{Field: e.Field()}

		switch e.Tag() {
		case "required":
			detail.Issue = "is required"
		case "email":
			detail.Issue = "must be a valid email address"
		case "url":
			detail.Issue = "must be a valid URL"
		default:
			detail.Issue = fmt.Sprintf("failed on the '%s' rule", e.Tag())
		}

		details = append(details, detail)
	}

	return Response{
		Status:  StatusError,
		Message: "Validation failed. Please check the data you are sending.",
		Details: details,
	}
}
