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

package batch

import (
	"errors"
	"fmt"
	"time"

	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/ledgerfile"
	"github.com/seedsproject/seedsdist/reconcile"
	"github.com/shopspring/decimal"
)

// TokenPlan redistributes token balances. Each batch issues its total to the
// authority and deposits it with the escrow contract, then for every record
// reduces the current balance and locks the new amount for the account.
type TokenPlan struct {
	TokenContract  string
	EscrowContract string
	Authority      string
	Symbol         string
	Precision      int
	LockAction     string
	LockType       string
	TriggerEvent   string
	TriggerSource  string
	VestingDate    time.Time
	Memo           string
}

func (p TokenPlan) auth() []action.PermissionLevel {
	return []action.PermissionLevel{action.Active(p.Authority)}
}

func (p TokenPlan) asset(amount decimal.Decimal) action.Asset {
	return action.NewAsset(amount, p.Precision, p.Symbol)
}

func (p TokenPlan) Aggregate(
	batchNum int,
	sum reconcile.Sum,
) ([]action.Action, error) {
	memo := p.Memo
	if memo == "" {
		memo = fmt.Sprintf("redistribution batch %d", batchNum)
	}
	total := p.asset(sum.Decimal())
	return []action.Action{
		{
			Account:       p.TokenContract,
			Name:          "issue",
			Authorization: p.auth(),
			Data: action.Issue{
				To:       p.Authority,
				Quantity: total,
				Memo:     memo,
			},
		},
		{
			Account:       p.TokenContract,
			Name:          "transfer",
			Authorization: p.auth(),
			Data: action.Transfer{
				From:     p.Authority,
				To:       p.EscrowContract,
				Quantity: total,
				Memo:     memo,
			},
		},
	}, nil
}

func (p TokenPlan) RecordActions(
	rec ledgerfile.Record,
) ([]action.Action, error) {
	current, err := decimal.NewFromString(rec.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount %q: %w", rec.CurrentAmount, err)
	}
	target, _, err := reconcile.ParseAmount(rec.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount %q: %w", rec.TargetAmount, err)
	}
	lockAction := p.LockAction
	if lockAction == "" {
		lockAction = "lock"
	}
	return []action.Action{
		{
			Account:       p.TokenContract,
			Name:          "reduce",
			Authorization: p.auth(),
			Data: action.Reduce{
				Account:  rec.Account,
				Quantity: p.asset(current),
			},
		},
		{
			Account:       p.EscrowContract,
			Name:          lockAction,
			Authorization: p.auth(),
			Data: action.Lock{
				LockType:      p.LockType,
				Sponsor:       p.Authority,
				Beneficiary:   rec.Account,
				Quantity:      p.asset(target),
				TriggerEvent:  p.TriggerEvent,
				TriggerSource: p.TriggerSource,
				VestingDate:   p.VestingDate,
				Notes:         p.Memo,
			},
		},
	}, nil
}

// VoicePlan resets voice balances with one action per record
type VoicePlan struct {
	Contract   string
	ActionName string
	Authority  string
	Precision  int
}

func (p VoicePlan) Aggregate(int, reconcile.Sum) ([]action.Action, error) {
	return nil, nil
}

func (p VoicePlan) RecordActions(
	rec ledgerfile.Record,
) ([]action.Action, error) {
	amount, _, err := reconcile.ParseAmount(rec.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid voice amount %q: %w", rec.TargetAmount, err)
	}
	if !action.ValidName(rec.Account) {
		return nil, errors.New("invalid account name")
	}
	return []action.Action{
		{
			Account:       p.Contract,
			Name:          p.ActionName,
			Authorization: []action.PermissionLevel{action.Active(p.Authority)},
			Data: action.SetVoice{
				User:      rec.Account,
				Amount:    amount,
				Precision: p.Precision,
			},
		},
	}, nil
}
