// Package domain defines the persistence models for customer applications.
// One application is stored as six related rows: the Customer root and five
// optional owned records keyed by the customer's numeric id. These types are
// mapped with GORM and form the core data layer of the onboarding backend.
package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SignatureMaxBytes bounds the stored signature payload (a data URL).
const SignatureMaxBytes = 16777215

// Signature is the stored signature payload. Its column type depends on the
// dialect: PostgreSQL caps varchar at 10485760 characters, so large text
// types are used everywhere.
type Signature string

// GormDataType implements schema.GormDataTypeInterface.
func (Signature) GormDataType() string { return "text" }

// GormDBDataType implements migrator.GormDataTypeInterface.
func (Signature) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "mediumtext"
	default:
		return "text"
	}
}

// Value implements driver.Valuer.
func (s Signature) Value() (driver.Value, error) { return string(s), nil }

// Scan implements sql.Scanner.
func (s *Signature) Scan(v any) error {
	switch t := v.(type) {
	case string:
		*s = Signature(t)
	case []byte:
		*s = Signature(t)
	case nil:
		*s = ""
	default:
		return fmt.Errorf("signature: unsupported type %T", v)
	}
	return nil
}

// Customer is the root of an application. UniqueID is the opaque public
// identifier; CustomerID is the internal key the dependents reference.
//
// Fields:
//   - UniqueID: UUID assigned at submission, immutable.
//   - Email, MobileNumber, IDProofNumber: globally unique.
//   - Gender, IDProofType, IDProofCopyAttached: upper-case codes from the
//     closed value sets in values.go.
//   - CreatedAt: set by GORM on insert.
//
// The dependents are optional; each is present at most once.
type Customer struct {
	CustomerID          uint           `gorm:"column:customer_id;primaryKey;autoIncrement"`
	UniqueID            string         `gorm:"column:unique_id;type:varchar(100);not null;uniqueIndex:ux_customer_unique_id"`
	FullName            string         `gorm:"column:full_name;type:varchar(100);not null"`
	FatherSpouseName    *string        `gorm:"column:father_spouse_name;type:varchar(100)"`
	DOB                 datatypes.Date `gorm:"column:dob;not null"`
	Gender              string         `gorm:"column:gender;type:varchar(10);not null;check:gender IN ('MALE','FEMALE','OTHER')"`
	Email               string         `gorm:"column:email;type:varchar(100);not null;uniqueIndex:ux_customer_email"`
	MobileNumber        string         `gorm:"column:mobile_number;type:varchar(15);not null;uniqueIndex:ux_customer_mobile_number"`
	AlternateNumber     *string        `gorm:"column:alternate_number;type:varchar(15)"`
	IDProofType         string         `gorm:"column:id_proof_type;type:varchar(20);not null;check:id_proof_type IN ('AADHAAR','VOTER_ID','PASSPORT','DRIVING_LICENSE','OTHER')"`
	IDProofNumber       string         `gorm:"column:id_proof_number;type:varchar(50);not null;uniqueIndex:ux_customer_id_proof_number"`
	IDProofCopyAttached string         `gorm:"column:id_proof_copy_attached;type:varchar(3);not null;default:'NO';check:id_proof_copy_attached IN ('YES','NO')"`
	CreatedAt           time.Time      `gorm:"column:created_at;not null;autoCreateTime"`

	Address     *InstallationAddress `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Service     *ServiceDetails      `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Payment     *PaymentDetails      `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Declaration *Declaration         `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Office      *OfficeUse           `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customer" }

// InstallationAddress is where the connection is installed.
// GPS coordinates are optional and stored with six decimal places.
type InstallationAddress struct {
	AddressID      uint                `gorm:"column:address_id;primaryKey;autoIncrement"`
	CustomerID     uint                `gorm:"column:customer_id;not null;uniqueIndex:ux_installation_address_customer"`
	HouseFlatNo    *string             `gorm:"column:house_flat_no;type:varchar(50)"`
	StreetLocality *string             `gorm:"column:street_locality;type:varchar(100)"`
	City           *string             `gorm:"column:city;type:varchar(50)"`
	District       *string             `gorm:"column:district;type:varchar(50)"`
	State          *string             `gorm:"column:state;type:varchar(50)"`
	PinCode        *string             `gorm:"column:pin_code;type:varchar(10)"`
	Landmark       *string             `gorm:"column:landmark;type:varchar(100)"`
	GPSLat         decimal.NullDecimal `gorm:"column:gps_lat;type:decimal(10,6)"`
	GPSLong        decimal.NullDecimal `gorm:"column:gps_long;type:decimal(10,6)"`
}

// TableName returns the database table name for InstallationAddress.
func (InstallationAddress) TableName() string { return "installation_address" }

// ServiceDetails describes the subscribed plan.
type ServiceDetails struct {
	ServiceID          uint            `gorm:"column:service_id;primaryKey;autoIncrement"`
	CustomerID         uint            `gorm:"column:customer_id;not null;uniqueIndex:ux_service_details_customer"`
	InternetPlan       string          `gorm:"column:internet_plan;type:varchar(100);not null"`
	SpeedDataLimit     *string         `gorm:"column:speed_data_limit;type:varchar(50)"`
	BillingCycle       string          `gorm:"column:billing_cycle;type:varchar(10);not null;check:billing_cycle IN ('MONTHLY','QUARTERLY','YEARLY')"`
	InstallationDate   *datatypes.Date `gorm:"column:installation_date"`
	StaticIPRequired   string          `gorm:"column:static_ip_required;type:varchar(3);not null;default:'NO';check:static_ip_required IN ('YES','NO')"`
	AdditionalServices *string         `gorm:"column:additional_services;type:text"`
}

// TableName returns the database table name for ServiceDetails.
func (ServiceDetails) TableName() string { return "service_details" }

// PaymentDetails records the upfront payment. The three components default
// to zero; TotalAmountPaid is required and is not recomputed from them.
// PaymentDate is set by the server at insert time.
type PaymentDetails struct {
	PaymentID            uint            `gorm:"column:payment_id;primaryKey;autoIncrement"`
	CustomerID           uint            `gorm:"column:customer_id;not null;uniqueIndex:ux_payment_details_customer"`
	SecurityDeposit      decimal.Decimal `gorm:"column:security_deposit;type:decimal(10,2);not null;default:0"`
	InstallationCharges  decimal.Decimal `gorm:"column:installation_charges;type:decimal(10,2);not null;default:0"`
	FirstMonthRental     decimal.Decimal `gorm:"column:first_month_rental;type:decimal(10,2);not null;default:0"`
	TotalAmountPaid      decimal.Decimal `gorm:"column:total_amount_paid;type:decimal(10,2);not null"`
	PaymentMode          string          `gorm:"column:payment_mode;type:varchar(20);not null;check:payment_mode IN ('CASH','UPI','BANK_TRANSFER','CARD')"`
	TransactionReceiptNo *string         `gorm:"column:transaction_receipt_no;type:varchar(100)"`
	PaymentDate          time.Time       `gorm:"column:payment_date;not null"`
}

// TableName returns the database table name for PaymentDetails.
func (PaymentDetails) TableName() string { return "payment_details" }

// Declaration holds the customer's signed declaration. Signature is an
// opaque image payload (a data URL) and is never interpreted on write.
type Declaration struct {
	DeclarationID   uint           `gorm:"column:declaration_id;primaryKey;autoIncrement"`
	CustomerID      uint           `gorm:"column:customer_id;not null;uniqueIndex:ux_declaration_customer"`
	DeclarationText *string        `gorm:"column:declaration_text;type:text"`
	Signature       Signature      `gorm:"column:signature;not null"`
	DeclarationDate datatypes.Date `gorm:"column:declaration_date;not null"`
}

// TableName returns the database table name for Declaration.
func (Declaration) TableName() string { return "declaration" }

// OfficeUse is staff-entered data; it exists only when a CAF number is given.
type OfficeUse struct {
	OfficeID            uint            `gorm:"column:office_id;primaryKey;autoIncrement"`
	CustomerID          uint            `gorm:"column:customer_id;not null;uniqueIndex:ux_office_use_customer"`
	CafNo               string          `gorm:"column:caf_no;type:varchar(50);not null;uniqueIndex:ux_office_use_caf_no"`
	PlanActivatedOn     *datatypes.Date `gorm:"column:plan_activated_on"`
	MacOnuSerialNo      *string         `gorm:"column:mac_onu_serial_no;type:varchar(100)"`
	OltPortVlanAssigned *string         `gorm:"column:olt_port_vlan_assigned;type:varchar(100)"`
	HandledBy           *string         `gorm:"column:handled_by;type:varchar(100)"`
}

// TableName returns the database table name for OfficeUse.
func (OfficeUse) TableName() string { return "office_use" }

// Models lists every application table in dependency order (root first).
func Models() []any {
	return []any{
		&Customer{},
		&InstallationAddress{},
		&ServiceDetails{},
		&PaymentDetails{},
		&Declaration{},
		&OfficeUse{},
		&Idempotency{},
	}
}
