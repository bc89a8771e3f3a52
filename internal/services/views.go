// Package services – read model
//
// FormView is the denormalized, read-only reconstruction of an application
// returned by GET /forms/:uniqueId and rendered into PDF exports. It mirrors
// the submission payload; a section whose row does not exist is nil (JSON
// null). Money is a fixed two-decimal string, GPS six decimals, dates
// YYYY-MM-DD.
package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/tbourn/isp-onboarding-backend/internal/domain"
)

// FormView is the complete application as stored.
type FormView struct {
	UniqueID            string           `json:"uniqueId" example:"5f0c2b0e-8d1e-4a57-9a3f-1f3a4c2d9b11"`
	CustomerDetails     CustomerView     `json:"customerDetails"`
	InstallationAddress *AddressView     `json:"installationAddress"`
	ServiceDetails      *ServiceView     `json:"serviceDetails"`
	PaymentDetails      *PaymentView     `json:"paymentDetails"`
	Declaration         *DeclarationView `json:"declaration"`
	OfficeUse           *OfficeView      `json:"officeUse"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// CustomerView is the customerDetails section of a FormView.
type CustomerView struct {
	FullName            string  `json:"fullName"`
	FatherSpouseName    *string `json:"fatherSpouseName"`
	DOB                 string  `json:"dob" example:"1990-05-17"`
	Gender              string  `json:"gender" example:"FEMALE"`
	Email               string  `json:"email"`
	MobileNumber        string  `json:"mobileNumber"`
	AlternateNumber     *string `json:"alternateNumber"`
	IDProofType         string  `json:"idProofType" example:"AADHAAR"`
	IDProofNumber       string  `json:"idProofNumber"`
	IDProofCopyAttached string  `json:"idProofCopyAttached" example:"YES"`
}

// AddressView is the installationAddress section of a FormView.
type AddressView struct {
	HouseFlatNo    *string `json:"houseFlatNo"`
	StreetLocality *string `json:"streetLocality"`
	City           *string `json:"city"`
	District       *string `json:"district"`
	State          *string `json:"state"`
	PinCode        *string `json:"pinCode"`
	Landmark       *string `json:"landmark"`
	GPSLat         *string `json:"gpsLat" example:"18.520430"`
	GPSLong        *string `json:"gpsLong" example:"73.856743"`
}

// ServiceView is the serviceDetails section of a FormView.
type ServiceView struct {
	InternetPlan       string  `json:"internetPlan"`
	SpeedDataLimit     *string `json:"speedDataLimit"`
	BillingCycle       string  `json:"billingCycle" example:"MONTHLY"`
	InstallationDate   *string `json:"installationDate" example:"2024-03-05"`
	StaticIPRequired   string  `json:"staticIpRequired" example:"NO"`
	AdditionalServices *string `json:"additionalServices"`
}

// PaymentView is the paymentDetails section of a FormView.
type PaymentView struct {
	SecurityDeposit      string    `json:"securityDeposit" example:"1000.00"`
	InstallationCharges  string    `json:"installationCharges" example:"500.00"`
	FirstMonthRental     string    `json:"firstMonthRental" example:"999.00"`
	TotalAmountPaid      string    `json:"totalAmountPaid" example:"2499.00"`
	PaymentMode          string    `json:"paymentMode" example:"UPI"`
	TransactionReceiptNo *string   `json:"transactionReceiptNo"`
	PaymentDate          time.Time `json:"paymentDate"`
}

// DeclarationView is the declaration section of a FormView.
type DeclarationView struct {
	DeclarationText *string `json:"declarationText"`
	Signature       string  `json:"signature"`
	DeclarationDate string  `json:"declarationDate" example:"2024-03-02"`
}

// OfficeView is the officeUse section of a FormView.
type OfficeView struct {
	CafNo               string  `json:"cafNo"`
	PlanActivatedOn     *string `json:"planActivatedOn"`
	MacOnuSerialNo      *string `json:"macOnuSerialNo"`
	OltPortVlanAssigned *string `json:"oltPortVlanAssigned"`
	HandledBy           *string `json:"handledBy"`
}

// NewFormView maps a customer with preloaded dependents to its read model.
func NewFormView(c *domain.Customer) *FormView {
	v := &FormView{
		UniqueID: c.UniqueID,
		CustomerDetails: CustomerView{
			FullName:            c.FullName,
			FatherSpouseName:    c.FatherSpouseName,
			DOB:                 formatDate(c.DOB),
			Gender:              c.Gender,
			Email:               c.Email,
			MobileNumber:        c.MobileNumber,
			AlternateNumber:     c.AlternateNumber,
			IDProofType:         c.IDProofType,
			IDProofNumber:       c.IDProofNumber,
			IDProofCopyAttached: c.IDProofCopyAttached,
		},
		CreatedAt: c.CreatedAt.UTC(),
	}
	if a := c.Address; a != nil {
		v.InstallationAddress = &AddressView{
			HouseFlatNo:    a.HouseFlatNo,
			StreetLocality: a.StreetLocality,
			City:           a.City,
			District:       a.District,
			State:          a.State,
			PinCode:        a.PinCode,
			Landmark:       a.Landmark,
			GPSLat:         fixedOrNil(a.GPSLat, 6),
			GPSLong:        fixedOrNil(a.GPSLong, 6),
		}
	}
	if s := c.Service; s != nil {
		v.ServiceDetails = &ServiceView{
			InternetPlan:       s.InternetPlan,
			SpeedDataLimit:     s.SpeedDataLimit,
			BillingCycle:       s.BillingCycle,
			InstallationDate:   formatOptionalDate(s.InstallationDate),
			StaticIPRequired:   s.StaticIPRequired,
			AdditionalServices: s.AdditionalServices,
		}
	}
	if p := c.Payment; p != nil {
		v.PaymentDetails = &PaymentView{
			SecurityDeposit:      p.SecurityDeposit.StringFixed(2),
			InstallationCharges:  p.InstallationCharges.StringFixed(2),
			FirstMonthRental:     p.FirstMonthRental.StringFixed(2),
			TotalAmountPaid:      p.TotalAmountPaid.StringFixed(2),
			PaymentMode:          p.PaymentMode,
			TransactionReceiptNo: p.TransactionReceiptNo,
			PaymentDate:          p.PaymentDate.UTC(),
		}
	}
	if d := c.Declaration; d != nil {
		v.Declaration = &DeclarationView{
			DeclarationText: d.DeclarationText,
			Signature:       string(d.Signature),
			DeclarationDate: formatDate(d.DeclarationDate),
		}
	}
	if o := c.Office; o != nil {
		v.OfficeUse = &OfficeView{
			CafNo:               o.CafNo,
			PlanActivatedOn:     formatOptionalDate(o.PlanActivatedOn),
			MacOnuSerialNo:      o.MacOnuSerialNo,
			OltPortVlanAssigned: o.OltPortVlanAssigned,
			HandledBy:           o.HandledBy,
		}
	}
	return v
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format(dateLayout)
}

func formatOptionalDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := formatDate(*d)
	return &s
}

func fixedOrNil(d decimal.NullDecimal, places int32) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(places)
	return &s
}
