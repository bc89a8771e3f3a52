package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

var testTime = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

func TestNumeric_UnmarshalJSON(t *testing.T) {
	var p struct {
		A Numeric `json:"a"`
		B Numeric `json:"b"`
		C Numeric `json:"c"`
		D Numeric `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a": 2499, "b": " 12.50 ", "c": null, "d": 1e3}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.A != "2499" || p.B != "12.50" || p.C != "" || p.D != "1e3" {
		t.Fatalf("got %+v", p)
	}
	if d, ok := p.D.Decimal(); !ok || d.StringFixed(2) != "1000.00" {
		t.Fatalf("D decimal = %v %v", d, ok)
	}
	if err := json.Unmarshal([]byte(`{"a": true}`), &p); err == nil {
		t.Fatalf("expected error for boolean")
	}
}

func TestNumeric_Decimal(t *testing.T) {
	if _, ok := Numeric("").Decimal(); ok {
		t.Fatalf("blank parsed")
	}
	if _, ok := Numeric("abc").Decimal(); ok {
		t.Fatalf("garbage parsed")
	}
	if d, ok := Numeric(" 999.5 ").Decimal(); !ok || d.StringFixed(2) != "999.50" {
		t.Fatalf("got %v %v", d, ok)
	}
}

func TestSubmission_DecodeIgnoresClientIdentifiers(t *testing.T) {
	body := `{
		"uniqueId": "client-chosen",
		"createdAt": "2020-01-01T00:00:00Z",
		"customerDetails": {"fullName": "A", "email": "a@example.com"}
	}`
	var s Submission
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.CustomerDetails == nil || s.CustomerDetails.FullName != "A" {
		t.Fatalf("customerDetails not decoded: %+v", s.CustomerDetails)
	}
}

func TestSubmission_Normalize(t *testing.T) {
	s := validSubmission(1)
	s.CustomerDetails.Email = "  asha1@example.com "
	s.CustomerDetails.Gender = " male "
	s.CustomerDetails.IDProofCopyAttached = ""
	s.ServiceDetails.BillingCycle = "yearly"
	s.ServiceDetails.InstallationDate = strp("  ")
	s.OfficeUse = &OfficeInput{CafNo: ""}
	s.Normalize()

	c := s.CustomerDetails
	if c.Email != "asha1@example.com" || c.Gender != "MALE" || c.IDProofCopyAttached != "NO" || c.IDProofType != "AADHAAR" {
		t.Fatalf("customer: %+v", c)
	}
	if s.ServiceDetails.BillingCycle != "YEARLY" || s.ServiceDetails.StaticIPRequired != "NO" || s.ServiceDetails.InstallationDate != nil {
		t.Fatalf("service: %+v", s.ServiceDetails)
	}
	if s.PaymentDetails.PaymentMode != "BANK_TRANSFER" {
		t.Fatalf("paymentMode=%q", s.PaymentDetails.PaymentMode)
	}
	if s.OfficeUse != nil {
		t.Fatalf("officeUse without cafNo kept")
	}

	// Sections may be absent.
	(&Submission{}).Normalize()
}

func TestSubmission_ValidateOK(t *testing.T) {
	s := validSubmission(1)
	s.Normalize()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	out := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestSubmission_ValidateFailures(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(s *Submission)
		field string
		msg   string
	}{
		{"missing customer", func(s *Submission) { s.CustomerDetails = nil }, "customerDetails", "customerDetails is required"},
		{"missing name", func(s *Submission) { s.CustomerDetails.FullName = "" }, "customerDetails.fullName", "fullName is required"},
		{"long name", func(s *Submission) { s.CustomerDetails.FullName = strings.Repeat("x", 101) }, "customerDetails.fullName", "fullName must be at most 100 characters"},
		{"bad gender", func(s *Submission) { s.CustomerDetails.Gender = "x" }, "customerDetails.gender", "gender must be one of: MALE, FEMALE, OTHER"},
		{"bad email", func(s *Submission) { s.CustomerDetails.Email = "nope" }, "customerDetails.email", "email must be a valid email address"},
		{"bad dob", func(s *Submission) { s.CustomerDetails.DOB = "17/05/1990" }, "customerDetails.dob", "dob must be a date in YYYY-MM-DD format"},
		{"bad id proof", func(s *Submission) { s.CustomerDetails.IDProofType = "PAN" }, "customerDetails.idProofType", ""},
		{"bad billing", func(s *Submission) { s.ServiceDetails.BillingCycle = "WEEKLY" }, "serviceDetails.billingCycle", "billingCycle must be one of: MONTHLY, QUARTERLY, YEARLY"},
		{"missing plan", func(s *Submission) { s.ServiceDetails.InternetPlan = "" }, "serviceDetails.internetPlan", "internetPlan is required"},
		{"bad install date", func(s *Submission) { s.ServiceDetails.InstallationDate = strp("soon") }, "serviceDetails.installationDate", ""},
		{"bad static ip", func(s *Submission) { s.ServiceDetails.StaticIPRequired = "MAYBE" }, "serviceDetails.staticIpRequired", ""},
		{"missing total", func(s *Submission) { s.PaymentDetails.TotalAmountPaid = "" }, "paymentDetails.totalAmountPaid", "totalAmountPaid is required"},
		{"garbage total", func(s *Submission) { s.PaymentDetails.TotalAmountPaid = "lots" }, "paymentDetails.totalAmountPaid", ""},
		{"negative total", func(s *Submission) { s.PaymentDetails.TotalAmountPaid = "-1" }, "paymentDetails.totalAmountPaid", ""},
		{"huge deposit", func(s *Submission) { s.PaymentDetails.SecurityDeposit = "100000000" }, "paymentDetails.securityDeposit", ""},
		{"bad mode", func(s *Submission) { s.PaymentDetails.PaymentMode = "CHEQUE" }, "paymentDetails.paymentMode", "paymentMode must be one of: CASH, UPI, BANK_TRANSFER, CARD"},
		{"bad latitude", func(s *Submission) { s.InstallationAddress.GPSLat = "123.4" }, "installationAddress.gpsLat", "gpsLat must be a latitude between -90 and 90"},
		{"missing signature", func(s *Submission) { s.Declaration.Signature = "" }, "declaration.signature", "signature is required"},
		{"missing declaration date", func(s *Submission) { s.Declaration.DeclarationDate = "" }, "declaration.declarationDate", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSubmission(1)
			tc.mut(s)
			s.Normalize()
			errs := fieldErrors(t, s.Validate())
			msg, ok := errs[tc.field]
			if !ok {
				t.Fatalf("no error for %s in %v", tc.field, errs)
			}
			if tc.msg != "" && msg != tc.msg {
				t.Fatalf("message=%q want %q", msg, tc.msg)
			}
		})
	}
}

func TestSubmission_ValidateCollectsAll(t *testing.T) {
	s := validSubmission(1)
	s.CustomerDetails.FullName = ""
	s.CustomerDetails.Email = ""
	s.PaymentDetails.PaymentMode = ""
	s.Normalize()
	errs := fieldErrors(t, s.Validate())
	if len(errs) != 3 {
		t.Fatalf("want 3 field errors, got %v", errs)
	}
	if err := s.Validate(); !strings.HasPrefix(err.Error(), "validation error: ") {
		t.Fatalf("Error()=%q", err.Error())
	}
}

func TestParseDate(t *testing.T) {
	if tm, ok := parseDate("2024-03-05"); !ok || tm.Day() != 5 {
		t.Fatalf("plain date: %v %v", tm, ok)
	}
	if tm, ok := parseDate("2024-03-05T23:10:00+05:30"); !ok || tm.Day() != 5 || tm.Hour() != 0 {
		t.Fatalf("rfc3339: %v %v", tm, ok)
	}
	for _, bad := range []string{"", "05-03-2024", "2024-13-01"} {
		if _, ok := parseDate(bad); ok {
			t.Errorf("parseDate(%q) accepted", bad)
		}
	}
}

func TestPaymentRowRounding(t *testing.T) {
	p := &PaymentInput{
		SecurityDeposit:     "1000.005",
		InstallationCharges: "",
		FirstMonthRental:    "999",
		TotalAmountPaid:     "2499",
		PaymentMode:         "UPI",
	}
	row := p.row(testTime)
	if row.SecurityDeposit.StringFixed(2) != "1000.01" || !row.InstallationCharges.IsZero() || row.TotalAmountPaid.StringFixed(2) != "2499.00" {
		t.Fatalf("row: %+v", row)
	}
	if !row.PaymentDate.Equal(testTime) {
		t.Fatalf("payment date=%v", row.PaymentDate)
	}
}
