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
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeds(amount string) Asset {
	return NewAsset(decimal.RequireFromString(amount), 4, "SEEDS")
}

func TestAssetString(t *testing.T) {
	assert.Equal(t, "200.0000 SEEDS", seeds("200").String())
	assert.Equal(t, "0.0100 SEEDS", seeds("0.01").String())
	assert.Equal(t, "1234.5600 SEEDS", seeds("1234.56").String())
}

func TestActionWire(t *testing.T) {
	a := Action{
		Account:       "token.seeds",
		Name:          "issue",
		Authorization: []PermissionLevel{Active("token.seeds")},
		Data: Issue{
			To:       "token.seeds",
			Quantity: seeds("12.5"),
			Memo:     "batch 1",
		},
	}
	buf, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(
		t,
		`{
			"account": "token.seeds",
			"name": "issue",
			"authorization": [{"actor": "token.seeds", "permission": "active"}],
			"data": {"to": "token.seeds", "quantity": "12.5000 SEEDS", "memo": "batch 1"}
		}`,
		string(buf),
	)
}

func TestLockWire(t *testing.T) {
	lock := Lock{
		LockType:      "event",
		Sponsor:       "token.seeds",
		Beneficiary:   "acct1",
		Quantity:      seeds("200.00"),
		TriggerEvent:  "golive",
		TriggerSource: "dao.hypha",
		VestingDate:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Notes:         "redistribution",
	}
	wire := lock.Wire()
	assert.Equal(t, "200.0000 SEEDS", wire["quantity"])
	assert.Equal(t, "2026-01-02T03:04:05.000", wire["vesting_date"])
	assert.Equal(t, "acct1", wire["beneficiary"])
}

func TestSetVoiceScalesToSubunits(t *testing.T) {
	p := SetVoice{
		User:      "acct1",
		Amount:    decimal.RequireFromString("12.34"),
		Precision: 4,
	}
	assert.Equal(t, uint64(123400), p.Wire()["amount"])
}

func TestProposeWire(t *testing.T) {
	exp := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	p := Propose{
		Proposer:     "proposer1",
		ProposalName: "redista",
		Requested: []PermissionLevel{
			Active("guardian1"),
			Active("guardian2"),
		},
		Trx: Transaction{
			Expiration: exp,
			Actions: []SerializedAction{
				{
					Account:       "token.seeds",
					Name:          "issue",
					Authorization: []PermissionLevel{Active("token.seeds")},
					Data:          "00aa",
				},
			},
		},
	}
	buf, err := json.Marshal(p.Wire())
	require.NoError(t, err)
	assert.JSONEq(
		t,
		`{
			"proposer": "proposer1",
			"proposal_name": "redista",
			"requested": [
				{"actor": "guardian1", "permission": "active"},
				{"actor": "guardian2", "permission": "active"}
			],
			"trx": {
				"expiration": "2026-10-21T00:00:00",
				"ref_block_num": 0,
				"ref_block_prefix": 0,
				"max_net_usage_words": 0,
				"max_cpu_usage_ms": 0,
				"delay_sec": 0,
				"context_free_actions": [],
				"actions": [{
					"account": "token.seeds",
					"name": "issue",
					"authorization": [{"actor": "token.seeds", "permission": "active"}],
					"data": "00aa"
				}],
				"transaction_extensions": []
			}
		}`,
		string(buf),
	)
}

func TestValidName(t *testing.T) {
	testDefs := []struct {
		name  string
		valid bool
	}{
		{"token.seeds", true},
		{"redista", true},
		{"abc12345", true},
		{"", false},
		{"toolongname12", false},
		{"Upper", false},
		{"has6", false},
		{"ends.", false},
		{"with space", false},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.valid, ValidName(testDef.name), testDef.name)
	}
}
