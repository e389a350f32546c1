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

// Package chainrpc is a minimal client for the chain HTTP API
package chainrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seedsproject/seedsdist/action"
)

const (
	DefaultTimeout = 30 * time.Second
	// maxResponseBytes limits JSON API responses to 10 MiB
	maxResponseBytes = 10 << 20
)

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to a chain API node
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient sets a custom *http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a client for the API node at baseURL
// (e.g., "https://mainnet.telos.net")
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAccount returns the permissions of an account.
// Corresponds to POST /v1/chain/get_account.
func (c *Client) GetAccount(
	ctx context.Context,
	name string,
) (*Account, error) {
	var account Account
	if err := c.doPost(
		ctx,
		"/v1/chain/get_account",
		getAccountRequest{AccountName: name},
		&account,
	); err != nil {
		return nil, fmt.Errorf("getting account %s: %w", name, err)
	}
	return &account, nil
}

// SerializeActions packs the data of each action with the target contract's
// ABI. Corresponds to POST /v1/chain/abi_json_to_bin, called once per action.
func (c *Client) SerializeActions(
	ctx context.Context,
	actions []action.Action,
) ([]action.SerializedAction, error) {
	ret := make([]action.SerializedAction, 0, len(actions))
	for i, a := range actions {
		var args map[string]any
		if a.Data != nil {
			args = a.Data.Wire()
		}
		var resp abiJSONToBinResponse
		if err := c.doPost(
			ctx,
			"/v1/chain/abi_json_to_bin",
			abiJSONToBinRequest{Code: a.Account, Action: a.Name, Args: args},
			&resp,
		); err != nil {
			return nil, fmt.Errorf(
				"serializing action %d (%s::%s): %w",
				i,
				a.Account,
				a.Name,
				err,
			)
		}
		if resp.Binargs == "" {
			return nil, fmt.Errorf(
				"serializing action %d (%s::%s): empty binargs",
				i,
				a.Account,
				a.Name,
			)
		}
		ret = append(ret, action.SerializedAction{
			Account:       a.Account,
			Name:          a.Name,
			Authorization: a.Authorization,
			Data:          resp.Binargs,
		})
	}
	return ret, nil
}

func (c *Client) doPost(
	ctx context.Context,
	path string,
	body any,
	out any,
) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(buf),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return errors.New("nil response from server")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}
	if err := json.NewDecoder(
		io.LimitReader(resp.Body, maxResponseBytes),
	).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
