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

// Package testutil provides fake chain API and signing request servers for
// tests that exercise the distribution pipeline end to end.
package testutil

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/chainrpc"
)

// FakeChain answers get_account and abi_json_to_bin. Packed action data is
// the hex encoding of the JSON arguments, which keeps it deterministic.
type FakeChain struct {
	Server *httptest.Server

	mu             sync.Mutex
	accounts       map[string]chainrpc.Account
	serializeCalls int
	accountCalls   int
	failSerialize  bool
}

// NewFakeChain starts a fake chain API server that is closed with the test
func NewFakeChain(t *testing.T) *FakeChain {
	t.Helper()
	f := &FakeChain{
		accounts: make(map[string]chainrpc.Account),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chain/get_account", f.handleGetAccount)
	mux.HandleFunc("/v1/chain/abi_json_to_bin", f.handleAbiJSONToBin)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeChain) URL() string {
	return f.Server.URL
}

// SetMultisigAccount registers an account whose active permission lists the
// given actors (at their active permission) plus the account's own
// eosio.code permission
func (f *FakeChain) SetMultisigAccount(name string, actors ...string) {
	accounts := make([]chainrpc.PermissionLevelWeight, 0, len(actors)+1)
	for _, actor := range actors {
		accounts = append(accounts, chainrpc.PermissionLevelWeight{
			Permission: action.Active(actor),
			Weight:     1,
		})
	}
	accounts = append(accounts, chainrpc.PermissionLevelWeight{
		Permission: action.PermissionLevel{Actor: name, Permission: "eosio.code"},
		Weight:     uint16(len(actors)),
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[name] = chainrpc.Account{
		AccountName: name,
		Permissions: []chainrpc.Permission{
			{
				PermName: "owner",
				RequiredAuth: chainrpc.Authority{
					Threshold: 1,
				},
			},
			{
				PermName: "active",
				Parent:   "owner",
				RequiredAuth: chainrpc.Authority{
					Threshold: uint32(len(actors)/2 + 1),
					Accounts:  accounts,
				},
			},
		},
	}
}

// FailSerialize makes abi_json_to_bin answer with an error
func (f *FakeChain) FailSerialize(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSerialize = fail
}

func (f *FakeChain) SerializeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serializeCalls
}

func (f *FakeChain) AccountCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accountCalls
}

func (f *FakeChain) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountName string `json:"account_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.accountCalls++
	account, ok := f.accounts[req.AccountName]
	f.mu.Unlock()
	if !ok {
		http.Error(
			w,
			fmt.Sprintf(`{"code":500,"message":"unknown account %s"}`, req.AccountName),
			http.StatusInternalServerError,
		)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(account)
}

func (f *FakeChain) handleAbiJSONToBin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code   string          `json:"code"`
		Action string          `json:"action"`
		Args   json.RawMessage `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.serializeCalls++
	fail := f.failSerialize
	f.mu.Unlock()
	if fail {
		http.Error(w, `{"code":500,"message":"abi not found"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"binargs": hex.EncodeToString(req.Args),
	})
}

// FakeESR answers signing request calls with a URI derived from the request
// count, and records every request body
type FakeESR struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests [][]map[string]any
	failOn   int
}

// NewFakeESR starts a fake signing request server that is closed with the test
func NewFakeESR(t *testing.T) *FakeESR {
	t.Helper()
	f := &FakeESR{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeESR) URL() string {
	return f.Server.URL
}

// FailOn makes the nth request (1-based) fail with a 502. Zero disables.
func (f *FakeESR) FailOn(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn = n
}

// Requests returns the action lists received so far
func (f *FakeESR) Requests() [][]map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	ret := make([][]map[string]any, len(f.requests))
	copy(ret, f.requests)
	return ret
}

func (f *FakeESR) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actions []map[string]any `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req.Actions)
	n := len(f.requests)
	fail := f.failOn != 0 && n == f.failOn
	f.mu.Unlock()
	if fail {
		http.Error(w, "signing service unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"esr": fmt.Sprintf("esr://request-%d", n),
		"qr":  fmt.Sprintf("qr-%d", n),
	})
}
