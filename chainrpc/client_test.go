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

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seedsproject/seedsdist/action"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(
	t *testing.T,
	handler http.HandlerFunc,
) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGetAccount(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Use t.Errorf (not require) because httptest handlers
		// run in a separate goroutine
		if r.URL.Path != "/v1/chain/get_account" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		var req getAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.AccountName != "token.seeds" {
			t.Errorf("unexpected account %s", req.AccountName)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"account_name": "token.seeds",
			"permissions": [
				{
					"perm_name": "active",
					"parent": "owner",
					"required_auth": {
						"threshold": 2,
						"keys": [],
						"accounts": [
							{"permission": {"actor": "guardian1", "permission": "active"}, "weight": 1},
							{"permission": {"actor": "token.seeds", "permission": "eosio.code"}, "weight": 2}
						],
						"waits": []
					}
				}
			]
		}`))
	})

	client := NewClient(server.URL + "/")
	account, err := client.GetAccount(context.Background(), "token.seeds")
	require.NoError(t, err)
	assert.Equal(t, "token.seeds", account.AccountName)
	require.Len(t, account.Permissions, 1)
	auth := account.Permissions[0].RequiredAuth
	assert.Equal(t, uint32(2), auth.Threshold)
	require.Len(t, auth.Accounts, 2)
	assert.Equal(
		t,
		action.PermissionLevel{Actor: "guardian1", Permission: "active"},
		auth.Accounts[0].Permission,
	)
}

func TestGetAccountErrorStatus(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":500,"message":"unknown key"}`))
	})
	_, err := NewClient(server.URL).GetAccount(context.Background(), "nobody")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "unknown key")
}

func TestSerializeActions(t *testing.T) {
	var calls []abiJSONToBinRequest
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chain/abi_json_to_bin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req abiJSONToBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		calls = append(calls, req)
		_ = json.NewEncoder(w).Encode(abiJSONToBinResponse{
			Binargs: "0" + string(rune('0'+len(calls))),
		})
	})
	actions := []action.Action{
		{
			Account:       "token.seeds",
			Name:          "reduce",
			Authorization: []action.PermissionLevel{action.Active("token.seeds")},
			Data:          action.Reduce{Account: "acct1"},
		},
		{
			Account:       "escrow.seeds",
			Name:          "lock",
			Authorization: []action.PermissionLevel{action.Active("token.seeds")},
			Data:          action.Lock{Beneficiary: "acct1"},
		},
	}
	packed, err := NewClient(server.URL).SerializeActions(context.Background(), actions)
	require.NoError(t, err)
	require.Len(t, packed, 2)
	assert.Equal(t, "01", packed[0].Data)
	assert.Equal(t, "02", packed[1].Data)
	assert.Equal(t, "escrow.seeds", packed[1].Account)
	assert.Equal(t, "lock", packed[1].Name)
	assert.Equal(t, actions[1].Authorization, packed[1].Authorization)
	require.Len(t, calls, 2)
	assert.Equal(t, "reduce", calls[0].Action)
	assert.Equal(t, "acct1", calls[0].Args["account"])
	assert.Equal(t, "acct1", calls[1].Args["beneficiary"])
}

func TestSerializeActionsEmptyBinargs(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := NewClient(server.URL).SerializeActions(
		context.Background(),
		[]action.Action{{Account: "token.seeds", Name: "issue", Data: action.Issue{}}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty binargs")
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)
	client := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := client.GetAccount(context.Background(), "token.seeds")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
