// Package services – FormService
//
// FormService owns the lifecycle of a customer application: it normalizes
// and validates a submission, detects duplicates, writes the customer and
// its dependents in a single transaction, and reconstructs the stored
// record for JSON and PDF reads.
//
// The transaction is the only commit/rollback decision point. Any error
// returned from the transaction closure (duplicate, constraint violation or
// storage failure) discards every insert; nothing is retried.
//
// Observability: all public methods are OpenTelemetry-instrumented and
// submission outcomes are counted in isp_form_submissions_total.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/isp-onboarding-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultIdempotencyTTL = 24 * time.Hour

// Renderer turns a stored application into a printable document.
type Renderer interface {
	Render(v *FormView) ([]byte, error)
}

// FormService coordinates persistence and retrieval of applications.
type FormService struct {
	DB       *gorm.DB
	Renderer Renderer

	// FrontendBaseURL and APIBaseURL prefix the links returned after a
	// submission: <FrontendBaseURL>/<id> and <APIBaseURL>/forms/<id>.
	FrontendBaseURL string
	APIBaseURL      string

	IdempotencyTTL time.Duration

	// Now is the clock used for payment dates and idempotency expiry.
	Now func() time.Time
}

// Receipt describes a stored submission.
type Receipt struct {
	UniqueID    string
	FrontendURL string
	APIURL      string
	// Replayed is true when the receipt was served for a repeated
	// Idempotency-Key instead of creating a new application.
	Replayed bool
}

// Submit normalizes, validates and stores sub. When idemKey is non-empty
// and a live record exists for it, the original receipt is returned and
// nothing is written.
//
// Errors:
//   - *ValidationError when any field fails; nothing is written
//   - *DuplicateError when email or mobile already exists (email wins when
//     both match) or any unique index rejects an insert
//   - any other error is a storage failure
func (s *FormService) Submit(ctx context.Context, sub *Submission, idemKey string) (*Receipt, error) {
	tr := otel.Tracer("services/FormService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.Bool("idempotency.key_present", idemKey != "")),
	)
	defer span.End()

	if idemKey != "" {
		if rc, ok := s.replay(ctx, idemKey); ok {
			submissions.WithLabelValues(outcomeReplayed).Inc()
			span.SetAttributes(attribute.String("form.unique_id", rc.UniqueID), attribute.Bool("idempotency.replayed", true))
			return rc, nil
		}
	}

	if sub == nil {
		sub = &Submission{}
	}
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		submissions.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	now := s.now()
	var uniqueID string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := sub.CustomerDetails
		existing, err := repo.FindCustomerByEmailOrMobile(ctx, tx, c.Email, c.MobileNumber)
		switch {
		case err == nil:
			field := "mobile"
			if strings.EqualFold(existing.Email, c.Email) {
				field = "email"
			}
			return &DuplicateError{Field: field}
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		uniqueID = uuid.NewString()
		cust := c.customerRow(uniqueID)
		if err := repo.InsertCustomer(ctx, tx, cust); err != nil {
			return err
		}
		id := cust.CustomerID

		if a := sub.InstallationAddress; a != nil {
			if err := repo.InsertAddress(ctx, tx, id, a.row()); err != nil {
				return err
			}
		}
		if sv := sub.ServiceDetails; sv != nil {
			if err := repo.InsertService(ctx, tx, id, sv.row()); err != nil {
				return err
			}
		}
		if p := sub.PaymentDetails; p != nil {
			if err := repo.InsertPayment(ctx, tx, id, p.row(now)); err != nil {
				return err
			}
		}
		if d := sub.Declaration; d != nil {
			if err := repo.InsertDeclaration(ctx, tx, id, d.row()); err != nil {
				return err
			}
		}
		if o := sub.OfficeUse; o != nil {
			if err := repo.InsertOffice(ctx, tx, id, o.row()); err != nil {
				return err
			}
		}

		if idemKey != "" {
			if err := repo.PurgeExpiredIdempotency(ctx, tx, idemKey, now); err != nil {
				return err
			}
			if _, err := repo.CreateIdempotency(ctx, tx, idemKey, uniqueID, http.StatusCreated, s.ttl()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent request with the same key may have won the race.
		if idemKey != "" && (errors.Is(err, ErrDuplicateEntry) || errors.Is(err, repo.ErrDuplicate)) {
			if rc, ok := s.replay(ctx, idemKey); ok {
				submissions.WithLabelValues(outcomeReplayed).Inc()
				return rc, nil
			}
		}
		var ce *repo.ConstraintError
		if errors.As(err, &ce) {
			err = &DuplicateError{Field: duplicateField(ce.Column)}
		}
		if errors.Is(err, ErrDuplicateEntry) {
			submissions.WithLabelValues(outcomeDuplicate).Inc()
		} else {
			submissions.WithLabelValues(outcomeError).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "submit failed")
		}
		return nil, err
	}

	submissions.WithLabelValues(outcomeCreated).Inc()
	span.SetAttributes(attribute.String("form.unique_id", uniqueID))
	return s.receipt(uniqueID, false), nil
}

// Get returns the stored application for uniqueID or ErrFormNotFound.
func (s *FormService) Get(ctx context.Context, uniqueID string) (*FormView, error) {
	tr := otel.Tracer("services/FormService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("form.unique_id", uniqueID)),
	)
	defer span.End()

	c, err := repo.GetApplication(ctx, s.DB, uniqueID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return NewFormView(c), nil
}

// Stamp returns the creation time of an application without loading it.
// Records are immutable, so the identifier and this timestamp fully
// determine the representation.
func (s *FormService) Stamp(ctx context.Context, uniqueID string) (time.Time, error) {
	createdAt, err := repo.ApplicationStamp(ctx, s.DB, uniqueID)
	if errors.Is(err, repo.ErrNotFound) {
		return time.Time{}, ErrFormNotFound
	}
	return createdAt, err
}

// Document renders the application as a PDF and returns the bytes with a
// download file name.
func (s *FormService) Document(ctx context.Context, uniqueID string) ([]byte, string, error) {
	tr := otel.Tracer("services/FormService")
	ctx, span := tr.Start(ctx, "Document",
		trace.WithAttributes(attribute.String("form.unique_id", uniqueID)),
	)
	defer span.End()

	if s.Renderer == nil {
		return nil, "", errors.New("document renderer not configured")
	}
	v, err := s.Get(ctx, uniqueID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.Renderer.Render(v)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}
	documentsRendered.Inc()
	return pdf, "CustomerForm-" + uniqueID + ".pdf", nil
}

// Ping reports whether the record store is reachable.
func (s *FormService) Ping(ctx context.Context) error {
	return repo.Ping(ctx, s.DB)
}

func (s *FormService) replay(ctx context.Context, key string) (*Receipt, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, key, s.now())
	if err != nil {
		return nil, false
	}
	return s.receipt(rec.UniqueID, true), true
}

func (s *FormService) receipt(uniqueID string, replayed bool) *Receipt {
	return &Receipt{
		UniqueID:    uniqueID,
		FrontendURL: s.FrontendBaseURL + "/" + uniqueID,
		APIURL:      s.APIBaseURL + "/forms/" + uniqueID,
		Replayed:    replayed,
	}
}

func (s *FormService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *FormService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return defaultIdempotencyTTL
}

// duplicateField maps a unique column to the field name reported to clients.
func duplicateField(column string) string {
	switch column {
	case "email":
		return "email"
	case "mobile_number":
		return "mobile"
	case "id_proof_number":
		return "idProofNumber"
	case "caf_no":
		return "cafNo"
	case "unique_id":
		return "uniqueId"
	case "":
		return "unknown"
	}
	return column
}
