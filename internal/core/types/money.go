// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Numeric is a decimal that unmarshals from either a JSON number or a
// numeric string ("150" and 150 parse to the same value). Request bodies
// arrive from untyped clients; normalizing here keeps change detection in
// the approval workflow free of string/number coercion surprises.
//
// Valid distinguishes "field absent or null" from "field present": an
// omitted sensitive field is treated as unchanged, never as zero.
type Numeric struct {
	Decimal decimal.Decimal
	Valid   bool
}

// NewNumeric wraps a decimal in a present Numeric.
func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{Decimal: d, Valid: true}
}

// Ptr returns the decimal value, or nil when absent.
// Safe on a nil receiver so DTO fields can stay pointers.
func (n *Numeric) Ptr() *decimal.Decimal {
	if n == nil || !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

// UnmarshalJSON accepts a JSON number, a quoted numeric string, or null.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}

	token := string(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		token = strings.TrimSpace(s)
		if token == "" {
			n.Valid = false
			return nil
		}
	}

	d, err := decimal.NewFromString(token)
	if err != nil {
		return fmt.Errorf("parse numeric %q: %w", token, err)
	}
	n.Decimal = d
	n.Valid = true
	return nil
}

// MarshalJSON encodes the value as a JSON number, or null when absent.
func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Decimal.String()), nil
}
