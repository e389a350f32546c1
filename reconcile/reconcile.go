// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reconcile validates distribution amounts and keeps exact running
// totals. Totals are accumulated as integer hundredths so that the sum of a
// few thousand rows never drifts from the spreadsheet.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/seedsproject/seedsdist/ledgerfile"
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places amounts are stated with
const Places = 2

const centsPerUnit = 100

var (
	ErrAmountMismatch = errors.New("amount does not match its fixed-point rendering")
	errNegativeAmount = errors.New("negative amount")
)

// ReconciliationError reports a record whose stated amount does not survive a
// round trip through fixed-point rendering
type ReconciliationError struct {
	Record   ledgerfile.Record
	Rendered string
	Err      error
}

func (e *ReconciliationError) Error() string {
	if !errors.Is(e.Err, ErrAmountMismatch) {
		return fmt.Sprintf(
			"reconciliation failed for account %q (line %d) amount %q: %v",
			e.Record.Account,
			e.Record.Line,
			e.Record.TargetAmount,
			e.Err,
		)
	}
	return fmt.Sprintf(
		"reconciliation failed for account %q (line %d): amount %q renders as %q",
		e.Record.Account,
		e.Record.Line,
		e.Record.TargetAmount,
		e.Rendered,
	)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// Sum holds the running totals of the records accepted so far
type Sum struct {
	// Cents is the authoritative total in hundredths of a unit
	Cents int64
	// Float is the floating point total, for display only
	Float float64
	Count int
}

// Decimal returns the exact total
func (s Sum) Decimal() decimal.Decimal {
	return decimal.New(s.Cents, -Places)
}

func (s Sum) String() string {
	return s.Decimal().StringFixed(Places)
}

// ParseAmount parses a literal amount and checks that rendering it back with
// two decimal places reproduces the literal exactly. The rendered form is
// returned alongside ErrAmountMismatch.
func ParseAmount(literal string) (decimal.Decimal, string, error) {
	d, err := decimal.NewFromString(literal)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	rendered := d.StringFixed(Places)
	if rendered != literal {
		return decimal.Decimal{}, rendered, ErrAmountMismatch
	}
	if d.IsNegative() {
		return decimal.Decimal{}, rendered, errNegativeAmount
	}
	return d, rendered, nil
}

// Reconciler accumulates validated target amounts
type Reconciler struct {
	sum Sum
}

func New() *Reconciler {
	return &Reconciler{}
}

// Add validates a record and adds its target amount to the running totals.
// The totals are left unchanged when validation fails.
func (r *Reconciler) Add(rec ledgerfile.Record) error {
	amount, rendered, err := ParseAmount(rec.TargetAmount)
	if err != nil {
		return &ReconciliationError{Record: rec, Rendered: rendered, Err: err}
	}
	f, _ := amount.Float64()
	r.sum.Float += f
	r.sum.Cents += amount.Mul(decimal.NewFromInt(centsPerUnit)).Round(0).IntPart()
	r.sum.Count++
	return nil
}

// CurrentSum returns the totals of all records added so far
func (r *Reconciler) CurrentSum() Sum {
	return r.sum
}

// Reconcile validates every record in order and returns their total. It stops
// at the first record that fails.
func Reconcile(records []ledgerfile.Record) (Sum, error) {
	r := New()
	for _, rec := range records {
		if err := r.Add(rec); err != nil {
			return r.CurrentSum(), err
		}
	}
	return r.CurrentSum(), nil
}
