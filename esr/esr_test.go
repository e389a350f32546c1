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

package esr

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

func testActions() []action.Action {
	return []action.Action{
		{
			Account:       "token.seeds",
			Name:          "transfer",
			Authorization: []action.PermissionLevel{action.Active("token.seeds")},
			Data: action.Transfer{
				From: "token.seeds",
				To:   "escrow.seeds",
			},
		},
	}
}

func TestPublish(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %s", r.Header.Get("Content-Type"))
		}
		var req struct {
			Actions []map[string]any `json:"actions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Actions) != 1 || req.Actions[0]["name"] != "transfer" {
			t.Errorf("unexpected actions %v", req.Actions)
		}
		_, _ = w.Write([]byte(`{"esr":"esr://gmN0","qr":"data:image/png;base64,AAAA"}`))
	})
	p, err := NewPublisher(server.URL)
	require.NoError(t, err)
	result, err := p.Publish(context.Background(), 3, testActions())
	require.NoError(t, err)
	assert.Equal(t, "esr://gmN0", result.ESR)
	assert.Equal(t, "data:image/png;base64,AAAA", result.QR)
}

func TestPublishErrors(t *testing.T) {
	testDefs := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream down"))
			},
			status: http.StatusBadGateway,
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "empty esr",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"qr":"x"}`))
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			server := newTestServer(t, testDef.handler)
			p, err := NewPublisher(server.URL)
			require.NoError(t, err)
			_, err = p.Publish(context.Background(), 2, testActions())
			var pubErr *PublishError
			require.ErrorAs(t, err, &pubErr)
			assert.Equal(t, 2, pubErr.Batch)
			assert.Equal(t, testDef.status, pubErr.StatusCode)
		})
	}
}

func TestPublishTimeout(t *testing.T) {
	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)
	p, err := NewPublisher(server.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	_, err = p.Publish(context.Background(), 1, testActions())
	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
}

func TestNewPublisherRequiresEndpoint(t *testing.T) {
	_, err := NewPublisher("")
	require.Error(t, err)
}
