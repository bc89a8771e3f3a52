// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for an
// application: the Customer root and its five dependent rows.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// persistence and query composition.
//
// Error semantics:
//   - When a customer is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-index violations are returned as *ConstraintError, which
//     matches ErrDuplicate under errors.Is.
//   - Other DB errors are propagated unchanged.
//
// Functions:
//
//   - FindCustomerByEmailOrMobile(ctx, db, email, mobile) -> *domain.Customer, error
//     Returns any customer whose email or mobile number matches.
//
//   - InsertCustomer(ctx, db, c) -> error
//     Inserts the Customer row only; dependents are ignored.
//
//   - InsertAddress / InsertService / InsertPayment / InsertDeclaration /
//     InsertOffice(ctx, db, customerID, row) -> error
//     Insert one dependent row for an existing customer.
//
//   - GetApplication(ctx, db, uniqueID) -> *domain.Customer, error
//     Loads a customer by public identifier with all dependents preloaded.
//
// Usage:
//
//	err := db.Transaction(func(tx *gorm.DB) error {
//	    if err := repo.InsertCustomer(ctx, tx, c); err != nil {
//	        return err
//	    }
//	    return repo.InsertAddress(ctx, tx, c.CustomerID, addr)
//	})
//
// The transaction boundary belongs to the caller (see services.FormService).
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/isp-onboarding-backend/internal/domain"
)

// FindCustomerByEmailOrMobile returns a customer whose email equals email or
// whose mobile number equals mobile, or ErrNotFound. When one customer holds
// the email and another the mobile, the email holder is returned.
func FindCustomerByEmailOrMobile(ctx context.Context, db *gorm.DB, email, mobile string) (*domain.Customer, error) {
	var rows []domain.Customer
	res := db.WithContext(ctx).
		Where("email = ? OR mobile_number = ?", email, mobile).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN email = ? THEN 0 ELSE 1 END, customer_id",
			Vars:               []any{email},
			WithoutParentheses: true,
		}}).
		Limit(1).
		Find(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// InsertCustomer inserts c without touching its associations. On success
// c.CustomerID holds the generated key.
func InsertCustomer(ctx context.Context, db *gorm.DB, c *domain.Customer) error {
	return translate(db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

// InsertAddress inserts the installation address for customerID.
func InsertAddress(ctx context.Context, db *gorm.DB, customerID uint, a *domain.InstallationAddress) error {
	a.CustomerID = customerID
	return insert(ctx, db, a)
}

// InsertService inserts the service details for customerID.
func InsertService(ctx context.Context, db *gorm.DB, customerID uint, s *domain.ServiceDetails) error {
	s.CustomerID = customerID
	return insert(ctx, db, s)
}

// InsertPayment inserts the payment details for customerID.
func InsertPayment(ctx context.Context, db *gorm.DB, customerID uint, p *domain.PaymentDetails) error {
	p.CustomerID = customerID
	return insert(ctx, db, p)
}

// InsertDeclaration inserts the declaration for customerID.
func InsertDeclaration(ctx context.Context, db *gorm.DB, customerID uint, d *domain.Declaration) error {
	d.CustomerID = customerID
	return insert(ctx, db, d)
}

// InsertOffice inserts the office-use record for customerID.
func InsertOffice(ctx context.Context, db *gorm.DB, customerID uint, o *domain.OfficeUse) error {
	o.CustomerID = customerID
	return insert(ctx, db, o)
}

func insert(ctx context.Context, db *gorm.DB, row any) error {
	return translate(db.WithContext(ctx).Create(row).Error)
}

// GetApplication loads the customer with the given public identifier and
// preloads every dependent. Missing dependents stay nil.
func GetApplication(ctx context.Context, db *gorm.DB, uniqueID string) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).
		Preload("Address").
		Preload("Service").
		Preload("Payment").
		Preload("Declaration").
		Preload("Office").
		Where("unique_id = ?", uniqueID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
