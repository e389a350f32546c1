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

// Package action models the contract invocations assembled by the
// distribution tools. Payloads are typed and only become generic maps at the
// wire boundary.
package action

import (
	"encoding/json"
	"strings"
)

const PermissionActive = "active"

// PermissionLevel is an actor@permission pair
type PermissionLevel struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

// Active returns the active permission of the given account
func Active(actor string) PermissionLevel {
	return PermissionLevel{Actor: actor, Permission: PermissionActive}
}

func (p PermissionLevel) String() string {
	return p.Actor + "@" + p.Permission
}

func (p PermissionLevel) Wire() map[string]any {
	return map[string]any{
		"actor":      p.Actor,
		"permission": p.Permission,
	}
}

// Payload is the typed data of an action
type Payload interface {
	Wire() map[string]any
}

// Action is a single contract invocation
type Action struct {
	Account       string
	Name          string
	Authorization []PermissionLevel
	Data          Payload
}

// Wire returns the generic representation used by the chain API and the
// signing request service
func (a Action) Wire() map[string]any {
	auth := make([]map[string]any, 0, len(a.Authorization))
	for _, p := range a.Authorization {
		auth = append(auth, p.Wire())
	}
	var data map[string]any
	if a.Data != nil {
		data = a.Data.Wire()
	}
	return map[string]any{
		"account":       a.Account,
		"name":          a.Name,
		"authorization": auth,
		"data":          data,
	}
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Wire())
}

// WireList converts a list of actions
func WireList(actions []Action) []map[string]any {
	ret := make([]map[string]any, 0, len(actions))
	for _, a := range actions {
		ret = append(ret, a.Wire())
	}
	return ret
}

const maxNameLength = 12

// ValidName reports whether s is a valid account/action name: up to 12
// characters from a-z, 1-5 and '.', not ending with '.'
func ValidName(s string) bool {
	if s == "" || len(s) > maxNameLength || strings.HasSuffix(s, ".") {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '1' && c <= '5':
		case c == '.':
		default:
			return false
		}
	}
	return true
}
