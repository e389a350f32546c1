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

import "time"

// ExpirationFormat is the chain's time_point_sec representation
const ExpirationFormat = "2006-01-02T15:04:05"

// SerializedAction is an action whose data has been packed to its binary ABI
// form, hex encoded
type SerializedAction struct {
	Account       string
	Name          string
	Authorization []PermissionLevel
	Data          string
}

func (a SerializedAction) Wire() map[string]any {
	auth := make([]map[string]any, 0, len(a.Authorization))
	for _, p := range a.Authorization {
		auth = append(auth, p.Wire())
	}
	return map[string]any{
		"account":       a.Account,
		"name":          a.Name,
		"authorization": auth,
		"data":          a.Data,
	}
}

// Transaction is the envelope proposed to the multisig contract
type Transaction struct {
	Expiration         time.Time
	RefBlockNum        uint16
	RefBlockPrefix     uint32
	MaxNetUsageWords   uint32
	MaxCPUUsageMs      uint8
	DelaySec           uint32
	ContextFreeActions []SerializedAction
	Actions            []SerializedAction
}

func (t Transaction) Wire() map[string]any {
	wireList := func(list []SerializedAction) []map[string]any {
		ret := make([]map[string]any, 0, len(list))
		for _, a := range list {
			ret = append(ret, a.Wire())
		}
		return ret
	}
	return map[string]any{
		"expiration":             t.Expiration.UTC().Format(ExpirationFormat),
		"ref_block_num":          t.RefBlockNum,
		"ref_block_prefix":       t.RefBlockPrefix,
		"max_net_usage_words":    t.MaxNetUsageWords,
		"max_cpu_usage_ms":       t.MaxCPUUsageMs,
		"delay_sec":              t.DelaySec,
		"context_free_actions":   wireList(t.ContextFreeActions),
		"actions":                wireList(t.Actions),
		"transaction_extensions": []any{},
	}
}
