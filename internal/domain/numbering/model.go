// Package numbering issues gapless sequential invoice numbers per prefix,
// bounded by the authorized numbering resolution range.
package numbering

import (
	"fmt"
	"time"
)

// CounterState is the persistent state of one numbering series.
type CounterState struct {
	// Prefix identifies the series, e.g. "F" for standard sales invoices.
	Prefix string `db:"prefix" json:"prefix"`

	// CurrentNumber is the last number issued.
	CurrentNumber int64 `db:"current_number" json:"currentNumber"`

	// RangeEnd is the inclusive upper bound of the authorized range.
	// CurrentNumber <= RangeEnd holds after every successful issuance.
	RangeEnd int64 `db:"range_end" json:"rangeEnd"`

	// AuthorizationRef is the resolution that authorized the active range.
	AuthorizationRef string `db:"authorization_ref" json:"authorizationRef,omitempty"`

	// ResetAt is when the active range was loaded.
	ResetAt time.Time `db:"reset_at" json:"resetAt"`
}

// Format renders an invoice number: prefix followed by the number
// zero-padded to 5 digits. 57119 under prefix "F" formats as "F57119";
// wider numbers are never truncated.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s%05d", prefix, n)
}
