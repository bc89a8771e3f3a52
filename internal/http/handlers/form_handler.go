// Form HTTP handlers.
//
// This file exposes the application endpoints:
//   - POST /forms                  (submit a complete application)
//   - GET  /forms/{uniqueId}       (fetch a stored application, ETag support)
//   - GET  /forms/{uniqueId}/pdf   (download the printable form)
//   - GET  /health                 (liveness)
//
// Handlers are transport-thin: they decode the payload, call FormService and
// translate service errors into the response envelopes of response.go.
//
// Idempotency:
// If the client supplies an Idempotency-Key header and an earlier submission
// with that key is still live, the original receipt is returned with
// `Idempotency-Replayed: true` and nothing is written.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/isp-onboarding-backend/internal/http/middleware"
	"github.com/tbourn/isp-onboarding-backend/internal/services"
)

// timestampLayout renders health timestamps with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

//
// Service contract
//

// FormService defines the application operations consumed by the handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type FormService interface {
	// Submit validates and stores a submission atomically.
	Submit(ctx context.Context, sub *services.Submission, idemKey string) (*services.Receipt, error)
	// Get returns a stored application or services.ErrFormNotFound.
	Get(ctx context.Context, uniqueID string) (*services.FormView, error)
	// Stamp returns the creation time of an application.
	Stamp(ctx context.Context, uniqueID string) (time.Time, error)
	// Document renders an application as PDF, returning bytes and file name.
	Document(ctx context.Context, uniqueID string) ([]byte, string, error)
	// Ping checks the record store.
	Ping(ctx context.Context) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the service.
type Handlers struct {
	forms FormService
	// exposeErrors adds internal error detail to 5xx bodies.
	exposeErrors bool
	now          func() time.Time
}

// Options configures Handlers.
type Options struct {
	// ExposeErrors should be false in production.
	ExposeErrors bool
	// Now overrides the clock used in health responses.
	Now func() time.Time
}

// New constructs Handlers bound to forms.
func New(forms FormService, opts Options) *Handlers {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{forms: forms, exposeErrors: opts.ExposeErrors, now: now}
}

//
// Handlers
//

// CreateForm godoc
// @ID          createForm
// @Summary     Submit an application
// @Description Validates the payload and stores the customer with all supplied sections in one transaction.
// @Description Email and mobile number must not belong to an existing customer.
// @Tags        Forms
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Replays the original receipt when repeated"  example(2b1f0a3c-onboard-001)
// @Param       body             body    services.Submission  true  "Application payload"
//
// @Success     201  {object}  handlers.SubmitResponse
// @Header      201  {string}  Idempotency-Replayed  "true when the receipt was replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     409  {object}  handlers.ErrorResponse  "Duplicate entry"
// @Failure     413  {object}  handlers.ErrorResponse  "Payload too large"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /forms [post]
func (h *Handlers) CreateForm(c *gin.Context) {
	var sub services.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrorResponse{Code: ErrCodePayloadTooLarge, Message: msgTooLarge})
			return
		}
		fail(c, http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeValidation,
			Message: msgInvalidPayload,
			Errors:  []services.FieldError{{Field: "body", Message: "request body must be a valid JSON object"}},
		})
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	rc, err := h.forms.Submit(c.Request.Context(), &sub, key)
	if err != nil {
		h.submitError(c, err)
		return
	}

	if rc.Replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, SubmitResponse{
		Success:     true,
		Message:     msgSubmitted,
		UniqueID:    rc.UniqueID,
		FrontendURL: rc.FrontendURL,
		APIURL:      rc.APIURL,
	})
}

func (h *Handlers) submitError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var derr *services.DuplicateError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeValidation,
			Message: "Validation failed",
			Errors:  verr.Fields,
		})
	case errors.As(err, &derr):
		fail(c, http.StatusConflict, ErrorResponse{
			Code:           ErrCodeDuplicateEntry,
			Message:        duplicateMessage(derr.Field),
			DuplicateField: derr.Field,
		})
	default:
		internalError(c, err, msgSubmitFailed, h.exposeErrors)
	}
}

// duplicateMessage words a DUPLICATE_ENTRY message for field.
func duplicateMessage(field string) string {
	switch field {
	case "email":
		return "A customer with this email already exists"
	case "mobile":
		return "A customer with this mobile number already exists"
	case "idProofNumber":
		return "A customer with this ID proof number already exists"
	case "cafNo":
		return "An application with this CAF number already exists"
	}
	return "Duplicate entry"
}

// GetForm godoc
// @ID          getForm
// @Summary     Fetch an application
// @Description Returns the customer and every stored section. Stored records never change, so a strong ETag is sent and If-None-Match may yield 304.
// @Tags        Forms
// @Produce     json
//
// @Param       uniqueId       path    string  true   "Application identifier"  format(uuid) example(5f0c2b0e-8d1e-4a57-9a3f-1f3a4c2d9b11)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.FormResponse
// @Header      200  {string}  ETag  "Strong ETag of the stored record"
// @Success     304  {string}  string  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Form not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /forms/{uniqueId} [get]
func (h *Handlers) GetForm(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("uniqueId")

	// ETag pre-check without loading the record.
	createdAt, err := h.forms.Stamp(ctx, id)
	if err != nil {
		h.fetchError(c, err)
		return
	}
	etag := formETag(id, createdAt)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "private, no-cache")
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}

	v, err := h.forms.Get(ctx, id)
	if err != nil {
		h.fetchError(c, err)
		return
	}
	ok(c, http.StatusOK, FormResponse{Success: true, Data: v})
}

// GetFormPDF godoc
// @ID          getFormPdf
// @Summary     Download an application as PDF
// @Description Renders the stored application as a printable A4 form.
// @Tags        Forms
// @Produce     application/pdf
//
// @Param       uniqueId  path  string  true  "Application identifier"  format(uuid)
//
// @Success     200  {file}    file
// @Failure     404  {object}  handlers.ErrorResponse  "Form not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /forms/{uniqueId}/pdf [get]
func (h *Handlers) GetFormPDF(c *gin.Context) {
	pdf, name, err := h.forms.Document(c.Request.Context(), c.Param("uniqueId"))
	if err != nil {
		h.fetchError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handlers) fetchError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrFormNotFound) {
		fail(c, http.StatusNotFound, ErrorResponse{Code: ErrCodeFormNotFound, Message: msgFormNotFound})
		return
	}
	internalError(c, err, msgFetchFailed, h.exposeErrors)
}

// formETag is strong: an application is immutable once stored.
func formETag(id string, createdAt time.Time) string {
	return fmt.Sprintf(`"form-%s-%d"`, id, createdAt.UnixNano())
}

// Health godoc
// @ID          health
// @Summary     Liveness probe
// @Description Always answers 200 while the process is up; database reports whether the record store answered a ping.
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	db := "up"
	if err := h.forms.Ping(c.Request.Context()); err != nil {
		db = "down"
		middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database ping failed")
	}
	ok(c, http.StatusOK, HealthResponse{
		Status:    "OK",
		Message:   msgHealthy,
		Timestamp: h.now().UTC().Format(timestampLayout),
		Database:  db,
	})
}

// NotFound is the fallback for unknown routes.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "message": msgRouteNotFound})
}

// MethodNotAllowed answers known paths requested with an unsupported verb.
func MethodNotAllowed(c *gin.Context) {
	Fail(c, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
}
