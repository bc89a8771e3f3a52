// Package domain defines the persistence models for customer applications.
// This file holds the closed value sets (gender, ID proof type, billing cycle,
// payment mode and yes/no flags) shared by write-path validation and the
// read/render paths.
package domain

import (
	"sort"
	"strings"
)

// ValueSet is an immutable, closed set of upper-case codes with display labels.
type ValueSet struct {
	name   string
	order  []string
	labels map[string]string
}

// NewValueSet builds a ValueSet from code/label pairs, preserving order.
func NewValueSet(name string, pairs ...[2]string) ValueSet {
	vs := ValueSet{
		name:   name,
		order:  make([]string, 0, len(pairs)),
		labels: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		vs.order = append(vs.order, p[0])
		vs.labels[p[0]] = p[1]
	}
	return vs
}

// Name returns the set's identifier (also used as its validation tag).
func (v ValueSet) Name() string { return v.name }

// Contains reports whether code is a member of the set. Matching is exact;
// callers normalize with Normalize first.
func (v ValueSet) Contains(code string) bool {
	_, ok := v.labels[code]
	return ok
}

// Values returns the codes in declaration order.
func (v ValueSet) Values() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Label returns the display label for code, or code itself when unknown.
func (v ValueSet) Label(code string) string {
	if l, ok := v.labels[code]; ok {
		return l
	}
	return code
}

// String lists the members, e.g. "CASH, UPI".
func (v ValueSet) String() string {
	vals := v.Values()
	return strings.Join(vals, ", ")
}

// Normalize trims and upper-cases a raw client value.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

var (
	Genders = NewValueSet("gender",
		[2]string{"MALE", "Male"},
		[2]string{"FEMALE", "Female"},
		[2]string{"OTHER", "Other"},
	)

	IDProofTypes = NewValueSet("id_proof_type",
		[2]string{"AADHAAR", "Aadhaar"},
		[2]string{"VOTER_ID", "Voter ID"},
		[2]string{"PASSPORT", "Passport"},
		[2]string{"DRIVING_LICENSE", "Driving License"},
		[2]string{"OTHER", "Other"},
	)

	YesNo = NewValueSet("yes_no",
		[2]string{"YES", "Yes"},
		[2]string{"NO", "No"},
	)

	BillingCycles = NewValueSet("billing_cycle",
		[2]string{"MONTHLY", "Monthly"},
		[2]string{"QUARTERLY", "Quarterly"},
		[2]string{"YEARLY", "Yearly"},
	)

	PaymentModes = NewValueSet("payment_mode",
		[2]string{"CASH", "Cash"},
		[2]string{"UPI", "UPI"},
		[2]string{"BANK_TRANSFER", "Bank Transfer"},
		[2]string{"CARD", "Card"},
	)
)

// ValueSets returns every closed set, sorted by name.
func ValueSets() []ValueSet {
	out := []ValueSet{Genders, IDProofTypes, YesNo, BillingCycles, PaymentModes}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
