// Package services – submission payload
//
// This file defines the JSON shape accepted by POST /forms, its
// normalization rules and the conversion into persistence rows. Sections
// other than customerDetails are optional; a nil section inserts no row.
package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/tbourn/isp-onboarding-backend/internal/domain"
)

// dateLayout is the wire format of every date-only field.
const dateLayout = "2006-01-02"

// maxAmount is the largest value a decimal(10,2) column holds.
var maxAmount = decimal.RequireFromString("99999999.99")

// Numeric carries a number that clients send either as a JSON number or as
// a string ("2499", "2499.00"). null decodes to the empty value.
type Numeric string

// UnmarshalJSON accepts numbers, numeric strings and null.
func (n *Numeric) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*n = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Numeric(strings.TrimSpace(s))
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return err
		}
		*n = Numeric(num.String())
	}
	return nil
}

// Decimal parses n, reporting false when it is blank or not a number.
func (n Numeric) Decimal() (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Submission is the complete POST /forms payload. Client-supplied uniqueId
// and createdAt fields are not part of it and are dropped by the decoder.
type Submission struct {
	CustomerDetails     *CustomerInput    `json:"customerDetails" validate:"required"`
	InstallationAddress *AddressInput     `json:"installationAddress"`
	ServiceDetails      *ServiceInput     `json:"serviceDetails"`
	PaymentDetails      *PaymentInput     `json:"paymentDetails"`
	Declaration         *DeclarationInput `json:"declaration"`
	OfficeUse           *OfficeInput      `json:"officeUse"`
}

// CustomerInput is the customerDetails section.
type CustomerInput struct {
	FullName            string  `json:"fullName" validate:"required,max=100" example:"Asha Verma"`
	FatherSpouseName    *string `json:"fatherSpouseName,omitempty" validate:"omitempty,max=100"`
	DOB                 string  `json:"dob" validate:"required,dateonly" example:"1990-05-17"`
	Gender              string  `json:"gender" validate:"required,gender" example:"FEMALE"`
	Email               string  `json:"email" validate:"required,email,max=100" example:"asha@example.com"`
	MobileNumber        string  `json:"mobileNumber" validate:"required,max=15" example:"9876543210"`
	AlternateNumber     *string `json:"alternateNumber,omitempty" validate:"omitempty,max=15"`
	IDProofType         string  `json:"idProofType" validate:"required,id_proof_type" example:"AADHAAR"`
	IDProofNumber       string  `json:"idProofNumber" validate:"required,max=50" example:"1234-5678-9012"`
	IDProofCopyAttached string  `json:"idProofCopyAttached" validate:"required,yes_no" example:"YES"`
}

// AddressInput is the installationAddress section.
type AddressInput struct {
	HouseFlatNo    *string `json:"houseFlatNo,omitempty" validate:"omitempty,max=50"`
	StreetLocality *string `json:"streetLocality,omitempty" validate:"omitempty,max=100"`
	City           *string `json:"city,omitempty" validate:"omitempty,max=50"`
	District       *string `json:"district,omitempty" validate:"omitempty,max=50"`
	State          *string `json:"state,omitempty" validate:"omitempty,max=50"`
	PinCode        *string `json:"pinCode,omitempty" validate:"omitempty,max=10"`
	Landmark       *string `json:"landmark,omitempty" validate:"omitempty,max=100"`
	GPSLat         Numeric `json:"gpsLat,omitempty" validate:"omitempty,latitude" swaggertype:"string" example:"18.520430"`
	GPSLong        Numeric `json:"gpsLong,omitempty" validate:"omitempty,longitude" swaggertype:"string" example:"73.856743"`
}

// ServiceInput is the serviceDetails section.
type ServiceInput struct {
	InternetPlan       string  `json:"internetPlan" validate:"required,max=100" example:"Fiber 100 Mbps"`
	SpeedDataLimit     *string `json:"speedDataLimit,omitempty" validate:"omitempty,max=50"`
	BillingCycle       string  `json:"billingCycle" validate:"required,billing_cycle" example:"MONTHLY"`
	InstallationDate   *string `json:"installationDate,omitempty" validate:"omitempty,dateonly" example:"2024-03-05"`
	StaticIPRequired   string  `json:"staticIpRequired" validate:"required,yes_no" example:"NO"`
	AdditionalServices *string `json:"additionalServices,omitempty"`
}

// PaymentInput is the paymentDetails section. The three components fall
// back to 0 when absent or unparseable; TotalAmountPaid is mandatory and is
// stored as sent, never recomputed.
type PaymentInput struct {
	SecurityDeposit      Numeric `json:"securityDeposit,omitempty" validate:"amount_component" swaggertype:"string" example:"1000"`
	InstallationCharges  Numeric `json:"installationCharges,omitempty" validate:"amount_component" swaggertype:"string" example:"500"`
	FirstMonthRental     Numeric `json:"firstMonthRental,omitempty" validate:"amount_component" swaggertype:"string" example:"999"`
	TotalAmountPaid      Numeric `json:"totalAmountPaid" validate:"required,amount" swaggertype:"string" example:"2499"`
	PaymentMode          string  `json:"paymentMode" validate:"required,payment_mode" example:"UPI"`
	TransactionReceiptNo *string `json:"transactionReceiptNo,omitempty" validate:"omitempty,max=100"`
}

// DeclarationInput is the declaration section. Signature is an opaque
// payload (normally an image data URL) stored verbatim.
type DeclarationInput struct {
	DeclarationText *string `json:"declarationText,omitempty"`
	Signature       string  `json:"signature" validate:"required,max=16777215" example:"data:image/png;base64,iVBORw0KGgo="`
	DeclarationDate string  `json:"declarationDate" validate:"required,dateonly" example:"2024-03-02"`
}

// OfficeInput is the staff-only officeUse section. It is stored only when
// CafNo is non-blank.
type OfficeInput struct {
	CafNo               string  `json:"cafNo" validate:"required,max=50" example:"CAF-2024-0001"`
	PlanActivatedOn     *string `json:"planActivatedOn,omitempty" validate:"omitempty,dateonly"`
	MacOnuSerialNo      *string `json:"macOnuSerialNo,omitempty" validate:"omitempty,max=100"`
	OltPortVlanAssigned *string `json:"oltPortVlanAssigned,omitempty" validate:"omitempty,max=100"`
	HandledBy           *string `json:"handledBy,omitempty" validate:"omitempty,max=100"`
}

// Normalize applies the server-side input rules in place:
//   - enum codes are trimmed and upper-cased; blank yes/no flags become "NO"
//   - unique identity values (email, mobile, id proof, CAF) are trimmed
//   - blank optional dates become nil
//   - an officeUse section without a CAF number is dropped
func (s *Submission) Normalize() {
	if c := s.CustomerDetails; c != nil {
		c.Gender = domain.Normalize(c.Gender)
		c.IDProofType = domain.Normalize(c.IDProofType)
		c.IDProofCopyAttached = flag(c.IDProofCopyAttached)
		c.Email = strings.TrimSpace(c.Email)
		c.MobileNumber = strings.TrimSpace(c.MobileNumber)
		c.IDProofNumber = strings.TrimSpace(c.IDProofNumber)
		c.DOB = strings.TrimSpace(c.DOB)
	}
	if sv := s.ServiceDetails; sv != nil {
		sv.BillingCycle = domain.Normalize(sv.BillingCycle)
		sv.StaticIPRequired = flag(sv.StaticIPRequired)
		sv.InstallationDate = optionalDate(sv.InstallationDate)
	}
	if p := s.PaymentDetails; p != nil {
		p.PaymentMode = domain.Normalize(p.PaymentMode)
	}
	if d := s.Declaration; d != nil {
		d.DeclarationDate = strings.TrimSpace(d.DeclarationDate)
	}
	if o := s.OfficeUse; o != nil {
		o.CafNo = strings.TrimSpace(o.CafNo)
		if o.CafNo == "" {
			s.OfficeUse = nil
		} else {
			o.PlanActivatedOn = optionalDate(o.PlanActivatedOn)
		}
	}
}

func flag(v string) string {
	v = domain.Normalize(v)
	if v == "" {
		return "NO"
	}
	return v
}

func optionalDate(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// parseDate accepts YYYY-MM-DD and, leniently, a full RFC 3339 timestamp
// whose calendar date is used.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func toDate(s string) datatypes.Date {
	t, _ := parseDate(s)
	return datatypes.Date(t)
}

func toOptionalDate(p *string) *datatypes.Date {
	if p == nil {
		return nil
	}
	d := toDate(*p)
	return &d
}

func componentAmount(n Numeric) decimal.Decimal {
	d, ok := n.Decimal()
	if !ok {
		return decimal.Zero
	}
	return d.Round(2)
}

func coordinate(n Numeric) decimal.NullDecimal {
	d, ok := n.Decimal()
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(6))
}

// customerRow builds the Customer row; dependents are built separately.
func (c *CustomerInput) customerRow(uniqueID string) *domain.Customer {
	return &domain.Customer{
		UniqueID:            uniqueID,
		FullName:            c.FullName,
		FatherSpouseName:    c.FatherSpouseName,
		DOB:                 toDate(c.DOB),
		Gender:              c.Gender,
		Email:               c.Email,
		MobileNumber:        c.MobileNumber,
		AlternateNumber:     c.AlternateNumber,
		IDProofType:         c.IDProofType,
		IDProofNumber:       c.IDProofNumber,
		IDProofCopyAttached: c.IDProofCopyAttached,
	}
}

func (a *AddressInput) row() *domain.InstallationAddress {
	return &domain.InstallationAddress{
		HouseFlatNo:    a.HouseFlatNo,
		StreetLocality: a.StreetLocality,
		City:           a.City,
		District:       a.District,
		State:          a.State,
		PinCode:        a.PinCode,
		Landmark:       a.Landmark,
		GPSLat:         coordinate(a.GPSLat),
		GPSLong:        coordinate(a.GPSLong),
	}
}

func (sv *ServiceInput) row() *domain.ServiceDetails {
	return &domain.ServiceDetails{
		InternetPlan:       sv.InternetPlan,
		SpeedDataLimit:     sv.SpeedDataLimit,
		BillingCycle:       sv.BillingCycle,
		InstallationDate:   toOptionalDate(sv.InstallationDate),
		StaticIPRequired:   sv.StaticIPRequired,
		AdditionalServices: sv.AdditionalServices,
	}
}

func (p *PaymentInput) row(paidAt time.Time) *domain.PaymentDetails {
	total, _ := p.TotalAmountPaid.Decimal()
	return &domain.PaymentDetails{
		SecurityDeposit:      componentAmount(p.SecurityDeposit),
		InstallationCharges:  componentAmount(p.InstallationCharges),
		FirstMonthRental:     componentAmount(p.FirstMonthRental),
		TotalAmountPaid:      total.Round(2),
		PaymentMode:          p.PaymentMode,
		TransactionReceiptNo: p.TransactionReceiptNo,
		PaymentDate:          paidAt,
	}
}

func (d *DeclarationInput) row() *domain.Declaration {
	return &domain.Declaration{
		DeclarationText: d.DeclarationText,
		Signature:       domain.Signature(d.Signature),
		DeclarationDate: toDate(d.DeclarationDate),
	}
}

func (o *OfficeInput) row() *domain.OfficeUse {
	return &domain.OfficeUse{
		CafNo:               o.CafNo,
		PlanActivatedOn:     toOptionalDate(o.PlanActivatedOn),
		MacOnuSerialNo:      o.MacOnuSerialNo,
		OltPortVlanAssigned: o.OltPortVlanAssigned,
		HandledBy:           o.HandledBy,
	}
}
