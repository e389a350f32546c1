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

package chainrpc

import "github.com/seedsproject/seedsdist/action"

// Account is the subset of the get_account response used by this module
type Account struct {
	AccountName string       `json:"account_name"`
	Permissions []Permission `json:"permissions"`
}

type Permission struct {
	PermName     string    `json:"perm_name"`
	Parent       string    `json:"parent"`
	RequiredAuth Authority `json:"required_auth"`
}

type Authority struct {
	Threshold uint32                  `json:"threshold"`
	Keys      []KeyWeight             `json:"keys"`
	Accounts  []PermissionLevelWeight `json:"accounts"`
	Waits     []WaitWeight            `json:"waits"`
}

type KeyWeight struct {
	Key    string `json:"key"`
	Weight uint16 `json:"weight"`
}

type PermissionLevelWeight struct {
	Permission action.PermissionLevel `json:"permission"`
	Weight     uint16                 `json:"weight"`
}

type WaitWeight struct {
	WaitSec uint32 `json:"wait_sec"`
	Weight  uint16 `json:"weight"`
}

type abiJSONToBinRequest struct {
	Code   string         `json:"code"`
	Action string         `json:"action"`
	Args   map[string]any `json:"args"`
}

type abiJSONToBinResponse struct {
	Binargs string `json:"binargs"`
}

type getAccountRequest struct {
	AccountName string `json:"account_name"`
}
