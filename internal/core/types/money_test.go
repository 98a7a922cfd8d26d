package types

import (
	"encoding/json"
	"testing"
)

func TestNumericUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		json  string
		want  string
		valid bool
	}{
		{"number", `150`, "150", true},
		{"decimal number", `150.50`, "150.5", true},
		{"quoted number", `"150"`, "150", true},
		{"quoted decimal", `"150.50"`, "150.5", true},
		{"quoted with spaces", `" 150 "`, "150", true},
		{"null", `null`, "", false},
		{"empty string", `""`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n Numeric
			if err := json.Unmarshal([]byte(tc.json), &n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Valid != tc.valid {
				t.Fatalf("valid = %v, want %v", n.Valid, tc.valid)
			}
			if tc.valid && n.Decimal.String() != tc.want {
				t.Errorf("value = %s, want %s", n.Decimal.String(), tc.want)
			}
		})
	}
}

func TestNumericUnmarshalRejectsGarbage(t *testing.T) {
	var n Numeric
	if err := json.Unmarshal([]byte(`"abc"`), &n); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}

func TestNumericStringAndNumberCompareEqual(t *testing.T) {
	// "150" from a form post and 150 from a typed client must normalize
	// to the same value, so the approval workflow sees no change.
	var fromString, fromNumber Numeric
	if err := json.Unmarshal([]byte(`"150"`), &fromString); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`150.00`), &fromNumber); err != nil {
		t.Fatal(err)
	}
	if !fromString.Decimal.Equal(fromNumber.Decimal) {
		t.Errorf("%s != %s", fromString.Decimal, fromNumber.Decimal)
	}
}

func TestNumericPtr(t *testing.T) {
	var absent *Numeric
	if absent.Ptr() != nil {
		t.Error("nil Numeric should yield nil pointer")
	}

	n := NewNumeric(MustMoney("99.90"))
	p := n.Ptr()
	if p == nil || !p.Equal(MustMoney("99.90")) {
		t.Errorf("unexpected pointer value: %v", p)
	}
}
