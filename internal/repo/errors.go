// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file translates driver-specific unique-constraint
// failures into a single sentinel that names the colliding column.
package repo

import (
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique index rejected the write.
var ErrDuplicate = errors.New("duplicate")

// ConstraintError reports a unique violation. Column is the database column
// the violated index covers, or "" when the driver message did not say.
// errors.Is(err, ErrDuplicate) holds for every ConstraintError.
type ConstraintError struct {
	Column string
	Cause  error
}

func (e *ConstraintError) Error() string {
	if e.Column == "" {
		return "duplicate: " + e.Cause.Error()
	}
	return fmt.Sprintf("duplicate %s: %v", e.Column, e.Cause)
}

// Unwrap exposes both ErrDuplicate and the driver error.
func (e *ConstraintError) Unwrap() []error { return []error{ErrDuplicate, e.Cause} }

// uniqueColumns maps index names and sqlite "table.column" spellings to the
// column they protect. Order matters: customer_id indexes on dependents are
// listed last so a message naming a business column wins.
var uniqueColumns = []struct {
	index  string
	qualif string
	column string
}{
	{"ux_customer_unique_id", "customer.unique_id", "unique_id"},
	{"ux_customer_email", "customer.email", "email"},
	{"ux_customer_mobile_number", "customer.mobile_number", "mobile_number"},
	{"ux_customer_id_proof_number", "customer.id_proof_number", "id_proof_number"},
	{"ux_office_use_caf_no", "office_use.caf_no", "caf_no"},
	{"ux_idempotency_key", "idempotency.idempotency_key", "idempotency_key"},
	{"ux_installation_address_customer", "installation_address.customer_id", "customer_id"},
	{"ux_service_details_customer", "service_details.customer_id", "customer_id"},
	{"ux_payment_details_customer", "payment_details.customer_id", "customer_id"},
	{"ux_declaration_customer", "declaration.customer_id", "customer_id"},
	{"ux_office_use_customer", "office_use.customer_id", "customer_id"},
}

// translate returns a *ConstraintError for unique violations and err unchanged
// otherwise.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}

	var (
		isDup bool
		hint  string
	)

	var myErr *mysqldrv.MySQLError
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &myErr) && myErr.Number == 1062:
		isDup, hint = true, myErr.Message
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		isDup, hint = true, pgErr.ConstraintName+" "+pgErr.Detail
	case errors.Is(err, gorm.ErrDuplicatedKey):
		isDup, hint = true, err.Error()
	default:
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			isDup, hint = true, err.Error()
		}
	}
	if !isDup {
		return err
	}
	return &ConstraintError{Column: columnFor(hint), Cause: err}
}

func columnFor(msg string) string {
	low := strings.ToLower(msg)
	for _, u := range uniqueColumns {
		if strings.Contains(low, u.index) || strings.Contains(low, u.qualif) {
			return u.column
		}
	}
	return ""
}
