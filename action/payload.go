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

package action

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a token quantity with its symbol
type Asset struct {
	Amount    decimal.Decimal
	Precision int
	Symbol    string
}

func NewAsset(amount decimal.Decimal, precision int, symbol string) Asset {
	return Asset{Amount: amount, Precision: precision, Symbol: symbol}
}

// String renders the asset the way the chain expects, e.g. "200.0000 SEEDS"
func (a Asset) String() string {
	return a.Amount.StringFixed(int32(a.Precision)) + " " + a.Symbol
}

// Issue mints new tokens to an account
type Issue struct {
	To       string
	Quantity Asset
	Memo     string
}

func (p Issue) Wire() map[string]any {
	return map[string]any{
		"to":       p.To,
		"quantity": p.Quantity.String(),
		"memo":     p.Memo,
	}
}

// Transfer moves tokens between accounts
type Transfer struct {
	From     string
	To       string
	Quantity Asset
	Memo     string
}

func (p Transfer) Wire() map[string]any {
	return map[string]any{
		"from":     p.From,
		"to":       p.To,
		"quantity": p.Quantity.String(),
		"memo":     p.Memo,
	}
}

// Reduce destroys part of an account's token balance
type Reduce struct {
	Account  string
	Quantity Asset
}

func (p Reduce) Wire() map[string]any {
	return map[string]any{
		"account":  p.Account,
		"quantity": p.Quantity.String(),
	}
}

const vestingDateFormat = "2006-01-02T15:04:05.000"

// Lock places tokens held by the escrow contract into a time or event locked
// holding for a beneficiary
type Lock struct {
	LockType      string
	Sponsor       string
	Beneficiary   string
	Quantity      Asset
	TriggerEvent  string
	TriggerSource string
	VestingDate   time.Time
	Notes         string
}

func (p Lock) Wire() map[string]any {
	return map[string]any{
		"lock_type":      p.LockType,
		"sponsor":        p.Sponsor,
		"beneficiary":    p.Beneficiary,
		"quantity":       p.Quantity.String(),
		"trigger_event":  p.TriggerEvent,
		"trigger_source": p.TriggerSource,
		"vesting_date":   p.VestingDate.UTC().Format(vestingDateFormat),
		"notes":          p.Notes,
	}
}

// SetVoice sets an account's voice balance. Voice is stored in token
// subunits, so the amount is scaled by the token precision.
type SetVoice struct {
	User      string
	Amount    decimal.Decimal
	Precision int
}

func (p SetVoice) Wire() map[string]any {
	return map[string]any{
		"user":   p.User,
		"amount": uint64(p.Amount.Shift(int32(p.Precision)).IntPart()),
	}
}

// Propose creates a multisig proposal wrapping a transaction
type Propose struct {
	Proposer     string
	ProposalName string
	Requested    []PermissionLevel
	Trx          Transaction
}

func (p Propose) Wire() map[string]any {
	requested := make([]map[string]any, 0, len(p.Requested))
	for _, r := range p.Requested {
		requested = append(requested, r.Wire())
	}
	return map[string]any{
		"proposer":      p.Proposer,
		"proposal_name": p.ProposalName,
		"requested":     requested,
		"trx":           p.Trx.Wire(),
	}
}
