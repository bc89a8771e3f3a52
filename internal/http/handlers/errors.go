// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are stable, machine-readable and UPPER_SNAKE_CASE; clients branch on
// them rather than on messages. Every failure envelope carries one of them
// (see response.go), except the route-not-found fallback which only carries
// a message.
//
// Example response:
//
//	{
//	  "success": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "DUPLICATE_ENTRY",
//	  "message": "A customer with this email already exists",
//	  "duplicateField": "email"
//	}
package handlers

const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeDuplicateEntry   = "DUPLICATE_ENTRY"
	ErrCodeFormNotFound     = "FORM_NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// Messages shared by the endpoints.
const (
	msgSubmitted      = "Form submitted successfully"
	msgSubmitFailed   = "Error submitting form"
	msgFetchFailed    = "Error fetching form"
	msgFormNotFound   = "Form not found"
	msgRouteNotFound  = "Route not found"
	msgInvalidPayload = "Invalid request payload"
	msgTooLarge       = "Request body too large"
	msgHealthy        = "ISP Form Backend is running"
)
