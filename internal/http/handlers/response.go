// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelopes and the helpers that write them.
//
// Conventions:
//   - Every response carries "success". Failures add a stable "code" (see
//     errors.go) and a human-readable "message".
//   - fail() centralizes failure writing; 5xx responses are logged with the
//     request-scoped logger and reported to Sentry.
//   - Internal error detail is exposed under "error" only when the handler
//     set was built with ExposeErrors (non-production environments).
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "FORM_NOT_FOUND",
//	  "message": "Form not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/isp-onboarding-backend/internal/http/middleware"
	"github.com/tbourn/isp-onboarding-backend/internal/services"
)

// ErrorResponse is the failure envelope returned by all endpoints.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code,omitempty" example:"DUPLICATE_ENTRY"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"A customer with this email already exists"`
	// Set on DUPLICATE_ENTRY: email, mobile, idProofNumber, cafNo or unknown
	DuplicateField string `json:"duplicateField,omitempty" example:"email"`
	// Set on VALIDATION_ERROR: one entry per failing field
	Errors []services.FieldError `json:"errors,omitempty"`
	// Internal detail, outside production only
	Error string `json:"error,omitempty"`
}

// SubmitResponse is returned by POST /forms on success.
type SubmitResponse struct {
	Success     bool   `json:"success" example:"true"`
	Message     string `json:"message" example:"Form submitted successfully"`
	UniqueID    string `json:"uniqueId" example:"5f0c2b0e-8d1e-4a57-9a3f-1f3a4c2d9b11"`
	FrontendURL string `json:"frontendUrl" example:"http://localhost:5173/5f0c2b0e-8d1e-4a57-9a3f-1f3a4c2d9b11"`
	APIURL      string `json:"apiUrl" example:"http://localhost:5000/api/forms/5f0c2b0e-8d1e-4a57-9a3f-1f3a4c2d9b11"`
}

// FormResponse wraps a stored application.
type FormResponse struct {
	Success bool               `json:"success" example:"true"`
	Data    *services.FormView `json:"data"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status    string `json:"status" example:"OK"`
	Message   string `json:"message" example:"ISP Form Backend is running"`
	Timestamp string `json:"timestamp" example:"2024-03-02T10:00:00.000Z"`
	Database  string `json:"database" example:"up"`
}

// fail aborts the request with resp, filling in the request ID. Server
// errors are logged with the request-scoped logger.
func fail(c *gin.Context, status int, resp ErrorResponse) {
	resp.Success = false
	resp.RequestID = middleware.GetRequestID(c)

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for callers outside this package
// (router fallbacks).
func Fail(c *gin.Context, status int, code, msg string) {
	fail(c, status, ErrorResponse{Code: code, Message: msg})
}

// internalError writes a 500 for err. The cause is reported to Sentry and
// exposed in the body only when expose is set; otherwise "error" carries
// middleware.InternalErrorDetail.
func internalError(c *gin.Context, err error, msg string, expose bool) {
	middleware.CaptureError(c, err)
	resp := ErrorResponse{Code: ErrCodeInternal, Message: msg, Error: middleware.InternalErrorDetail}
	if expose && err != nil {
		resp.Error = err.Error()
	}
	if err != nil {
		_ = c.Error(err)
	}
	fail(c, http.StatusInternalServerError, resp)
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
