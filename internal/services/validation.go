package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tbourn/isp-onboarding-backend/internal/domain"
)

var formValidate = newValidator()

// newValidator builds the submission validator: field names are reported
// by their JSON name and each closed value set is registered as a tag of
// the same name (gender, id_proof_type, yes_no, billing_cycle, payment_mode).
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, set := range domain.ValueSets() {
		set := set
		mustRegister(v, set.Name(), func(fl validator.FieldLevel) bool {
			return set.Contains(fl.Field().String())
		})
	}
	mustRegister(v, "dateonly", func(fl validator.FieldLevel) bool {
		_, ok := parseDate(fl.Field().String())
		return ok
	})
	mustRegister(v, "amount", func(fl validator.FieldLevel) bool {
		d, ok := Numeric(fl.Field().String()).Decimal()
		return ok && amountInRange(d)
	})
	// Components default to zero when unparseable, so only a parseable
	// out-of-range value fails.
	mustRegister(v, "amount_component", func(fl validator.FieldLevel) bool {
		d, ok := Numeric(fl.Field().String()).Decimal()
		return !ok || amountInRange(d)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func amountInRange(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Round(2).LessThanOrEqual(maxAmount)
}

// Validate checks every field of a normalized submission and returns a
// *ValidationError listing all failures, or nil.
func (s *Submission) Validate() error {
	err := formValidate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "Submission.customerDetails.dob"
// becomes "customerDetails.dob".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "email":
		return name + " must be a valid email address"
	case "dateonly":
		return name + " must be a date in YYYY-MM-DD format"
	case "amount", "amount_component":
		return fmt.Sprintf("%s must be a non-negative amount no greater than %s", name, maxAmount.StringFixed(2))
	case "latitude":
		return name + " must be a latitude between -90 and 90"
	case "longitude":
		return name + " must be a longitude between -180 and 180"
	}
	for _, set := range domain.ValueSets() {
		if set.Name() == fe.Tag() {
			return fmt.Sprintf("%s must be one of: %s", name, set)
		}
	}
	return name + " is invalid"
}
