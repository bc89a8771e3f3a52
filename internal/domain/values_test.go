package domain

import "testing"

func TestValueSet(t *testing.T) {
	if !PaymentModes.Contains("BANK_TRANSFER") || PaymentModes.Contains("bank_transfer") {
		t.Fatalf("Contains must match normalized codes exactly")
	}
	if got := PaymentModes.Label("BANK_TRANSFER"); got != "Bank Transfer" {
		t.Fatalf("Label = %q", got)
	}
	if got := PaymentModes.Label("CHEQUE"); got != "CHEQUE" {
		t.Fatalf("unknown codes label as themselves, got %q", got)
	}
	if got := Genders.String(); got != "MALE, FEMALE, OTHER" {
		t.Fatalf("String = %q", got)
	}

	vals := YesNo.Values()
	vals[0] = "MAYBE"
	if YesNo.Values()[0] != "YES" {
		t.Fatalf("Values must return a copy")
	}
}

func TestValueSets_SortedByName(t *testing.T) {
	want := []string{"billing_cycle", "gender", "id_proof_type", "payment_mode", "yes_no"}
	sets := ValueSets()
	if len(sets) != len(want) {
		t.Fatalf("got %d sets", len(sets))
	}
	for i, s := range sets {
		if s.Name() != want[i] {
			t.Fatalf("sets[%d] = %q; want %q", i, s.Name(), want[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  bank_transfer "); got != "BANK_TRANSFER" {
		t.Fatalf("Normalize = %q", got)
	}
}
