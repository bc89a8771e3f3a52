// Package document renders stored customer applications as printable PDF
// forms using gofpdf.
//
// The layout follows the paper CAF: a header with the provider's details,
// then one titled section per part of the application. Every field is
// printed; missing values read "N/A". The office-use section is printed only
// when the application has one.
package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/isp-onboarding-backend/internal/domain"
	"github.com/tbourn/isp-onboarding-backend/internal/services"
)

const (
	notAvailable = "N/A"
	dateLayout   = "2006-01-02"
	printLayout  = "02/01/2006"

	pageMargin = 15.0
	labelWidth = 62.0
	lineHeight = 7.0

	signatureWidth  = 60.0
	signatureHeight = 25.0
)

// Renderer produces the PDF form. The zero value prints a generic header.
type Renderer struct {
	OrgName    string
	OrgAddress string
	OrgContact string

	// Now stamps the "Generated on" footer; defaults to time.Now.
	Now func() time.Time
}

// New returns a Renderer with the given organisation header lines.
func New(orgName, orgAddress, orgContact string) *Renderer {
	return &Renderer{OrgName: orgName, OrgAddress: orgAddress, OrgContact: orgContact}
}

var printer = message.NewPrinter(language.English)

// Render builds the document for v.
func (r *Renderer) Render(v *services.FormView) ([]byte, error) {
	if v == nil {
		return nil, errors.New("document: nil form")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin+5)
	pdf.SetTitle("Customer Application Form "+v.UniqueID, true)
	pdf.SetCreator(r.orgName(), true)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	w := &writer{pdf: pdf, tr: tr}

	generated := r.now().Format("02/01/2006 15:04")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Application %s  |  Generated on %s  |  Page %d of {nb}", v.UniqueID, generated, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	r.header(w, v)

	c := v.CustomerDetails
	w.section("Customer Details")
	w.row("Full Name", c.FullName)
	w.row("Father / Spouse Name", opt(c.FatherSpouseName))
	w.row("Date of Birth", printDate(c.DOB))
	w.row("Gender", label(domain.Genders, c.Gender))
	w.row("Email", c.Email)
	w.row("Mobile Number", c.MobileNumber)
	w.row("Alternate Number", opt(c.AlternateNumber))
	w.row("ID Proof Type", label(domain.IDProofTypes, c.IDProofType))
	w.row("ID Proof Number", c.IDProofNumber)
	w.row("ID Proof Copy Attached", label(domain.YesNo, c.IDProofCopyAttached))

	w.section("Installation Address")
	if a := v.InstallationAddress; a != nil {
		w.row("House / Flat No", opt(a.HouseFlatNo))
		w.row("Street / Locality", opt(a.StreetLocality))
		w.row("City", opt(a.City))
		w.row("District", opt(a.District))
		w.row("State", opt(a.State))
		w.row("PIN Code", opt(a.PinCode))
		w.row("Landmark", opt(a.Landmark))
		w.row("GPS Coordinates", coordinates(a.GPSLat, a.GPSLong))
	} else {
		w.note(notAvailable)
	}

	w.section("Service Details")
	if s := v.ServiceDetails; s != nil {
		w.row("Internet Plan", s.InternetPlan)
		w.row("Speed / Data Limit", opt(s.SpeedDataLimit))
		w.row("Billing Cycle", label(domain.BillingCycles, s.BillingCycle))
		w.row("Installation Date", printOptionalDate(s.InstallationDate))
		w.row("Static IP Required", label(domain.YesNo, s.StaticIPRequired))
		w.row("Additional Services", opt(s.AdditionalServices))
	} else {
		w.note(notAvailable)
	}

	w.section("Payment Details")
	if p := v.PaymentDetails; p != nil {
		w.row("Security Deposit", Currency(p.SecurityDeposit))
		w.row("Installation Charges", Currency(p.InstallationCharges))
		w.row("First Month Rental", Currency(p.FirstMonthRental))
		w.bold()
		w.row("Total Amount Paid", Currency(p.TotalAmountPaid))
		w.regular()
		w.row("Payment Mode", label(domain.PaymentModes, p.PaymentMode))
		w.row("Transaction / Receipt No", opt(p.TransactionReceiptNo))
		w.row("Payment Date", printTime(p.PaymentDate))
	} else {
		w.note(notAvailable)
	}

	w.section("Declaration")
	if d := v.Declaration; d != nil {
		if d.DeclarationText != nil && strings.TrimSpace(*d.DeclarationText) != "" {
			w.paragraph(*d.DeclarationText)
		}
		w.row("Declaration Date", printDate(d.DeclarationDate))
		w.signature(d.Signature)
	} else {
		w.note(notAvailable)
	}

	if o := v.OfficeUse; o != nil {
		w.section("For Office Use Only")
		w.row("CAF No", o.CafNo)
		w.row("Plan Activated On", printOptionalDate(o.PlanActivatedOn))
		w.row("MAC / ONU Serial No", opt(o.MacOnuSerialNo))
		w.row("OLT Port / VLAN Assigned", opt(o.OltPortVlanAssigned))
		w.row("Handled By", opt(o.HandledBy))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(w *writer, v *services.FormView) {
	pdf := w.pdf
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, w.tr(r.orgName()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{r.OrgAddress, r.OrgContact} {
		if strings.TrimSpace(line) != "" {
			pdf.CellFormat(0, 5, w.tr(line), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "CUSTOMER APPLICATION FORM", "TB", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, w.tr("Application ID: "+v.UniqueID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, w.tr("Submitted on: "+printTime(v.CreatedAt)), "", 1, "L", false, 0, "")
}

func (r *Renderer) orgName() string {
	if s := strings.TrimSpace(r.OrgName); s != "" {
		return s
	}
	return "Internet Service Provider"
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// writer holds the current document and its code page translator.
type writer struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	style string
}

func (w *writer) section(title string) {
	w.pdf.Ln(4)
	w.pdf.SetFont("Helvetica", "B", 11)
	w.pdf.SetFillColor(230, 236, 245)
	w.pdf.CellFormat(0, 8, w.tr(title), "", 1, "L", true, 0, "")
	w.pdf.Ln(1)
	w.regular()
}

func (w *writer) bold()    { w.style = "B"; w.pdf.SetFont("Helvetica", "B", 10) }
func (w *writer) regular() { w.style = ""; w.pdf.SetFont("Helvetica", "", 10) }

// row prints "label: value", wrapping long values in the value column.
func (w *writer) row(label, value string) {
	if strings.TrimSpace(value) == "" {
		value = notAvailable
	}
	w.pdf.SetFont("Helvetica", "B", 10)
	w.pdf.CellFormat(labelWidth, lineHeight, w.tr(label), "", 0, "L", false, 0, "")
	w.pdf.SetFont("Helvetica", w.style, 10)
	w.pdf.MultiCell(0, lineHeight, w.tr(value), "", "L", false)
}

func (w *writer) note(text string) {
	w.pdf.SetFont("Helvetica", "I", 10)
	w.pdf.CellFormat(0, lineHeight, w.tr(text), "", 1, "L", false, 0, "")
	w.regular()
}

func (w *writer) paragraph(text string) {
	w.pdf.SetFont("Helvetica", "", 9)
	w.pdf.MultiCell(0, 5, w.tr(text), "", "J", false)
	w.pdf.Ln(2)
	w.regular()
}

// signature draws the customer's signature image. A payload that is not a
// PNG or JPEG data URL, or that fails to decode, is printed as text.
func (w *writer) signature(payload string) {
	w.pdf.SetFont("Helvetica", "B", 10)
	w.pdf.CellFormat(labelWidth, lineHeight, "Signature", "", 0, "L", false, 0, "")
	w.regular()

	imgType, raw, ok := decodeDataURL(payload)
	if !ok {
		w.pdf.MultiCell(0, lineHeight, w.tr(signatureText(payload)), "", "L", false)
		return
	}

	name := fmt.Sprintf("signature-%d", w.pdf.PageNo())
	opts := gofpdf.ImageOptions{ImageType: imgType}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	if !w.pdf.Ok() {
		w.pdf.ClearError()
		w.pdf.MultiCell(0, lineHeight, "[signature image could not be read]", "", "L", false)
		return
	}
	x, y := w.pdf.GetXY()
	w.pdf.ImageOptions(name, x, y, signatureWidth, signatureHeight, false, opts, 0, "")
	w.pdf.SetXY(pageMargin, y+signatureHeight+2)
}

// decodeDataURL extracts a base64 PNG or JPEG from a data URL.
func decodeDataURL(s string) (imgType string, raw []byte, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, false
	}
	meta, data, found := strings.Cut(s[len("data:"):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}
	switch strings.ToLower(strings.TrimSuffix(meta, ";base64")) {
	case "image/png":
		imgType = "PNG"
	case "image/jpeg", "image/jpg":
		imgType = "JPG"
	default:
		return "", nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(raw) == 0 {
		return "", nil, false
	}
	return imgType, raw, true
}

func signatureText(payload string) string {
	payload = strings.TrimSpace(payload)
	switch {
	case payload == "":
		return notAvailable
	case strings.HasPrefix(payload, "data:"):
		return "[signature image not printable]"
	case len(payload) > 120:
		return payload[:120] + "..."
	}
	return payload
}

// Currency formats a fixed-point amount as "Rs. 2,499.00". Unparseable
// input is printed as N/A.
func Currency(amount string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return notAvailable
	}
	return "Rs. " + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func opt(s *string) string {
	if s == nil {
		return notAvailable
	}
	return *s
}

func label(set domain.ValueSet, code string) string {
	if code == "" {
		return notAvailable
	}
	return set.Label(code)
}

// printDate converts YYYY-MM-DD to DD/MM/YYYY.
func printDate(s string) string {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return notAvailable
	}
	return t.Format(printLayout)
}

func printOptionalDate(s *string) string {
	if s == nil {
		return notAvailable
	}
	return printDate(*s)
}

func printTime(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format(printLayout)
}

func coordinates(lat, long *string) string {
	if lat == nil && long == nil {
		return notAvailable
	}
	return opt(lat) + ", " + opt(long)
}
