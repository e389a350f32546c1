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

// Package esr turns action lists into signing requests through an external
// signing request service
package esr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seedsproject/seedsdist/action"
)

const (
	DefaultTimeout   = 30 * time.Second
	maxResponseBytes = 10 << 20
)

// PublishError wraps any failure to obtain a signing request for a batch
type PublishError struct {
	Batch int
	// StatusCode is set when the service answered with a non-2xx status
	StatusCode int
	Err        error
}

func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf(
			"batch %d: publishing signing request: status %d: %v",
			e.Batch,
			e.StatusCode,
			e.Err,
		)
	}
	return fmt.Sprintf("batch %d: publishing signing request: %v", e.Batch, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Result is the signing request produced for a batch
type Result struct {
	ESR string `json:"esr"`
	QR  string `json:"qr"`
}

type request struct {
	Actions []map[string]any `json:"actions"`
}

// Publisher posts action lists to the signing request service
type Publisher struct {
	endpoint   string
	httpClient *http.Client
}

type PublisherOption func(*Publisher)

// WithHTTPClient sets a custom *http.Client
func WithHTTPClient(hc *http.Client) PublisherOption {
	return func(p *Publisher) {
		if hc != nil {
			p.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) PublisherOption {
	return func(p *Publisher) {
		if timeout > 0 {
			p.httpClient.Timeout = timeout
		}
	}
}

func NewPublisher(endpoint string, opts ...PublisherOption) (*Publisher, error) {
	if endpoint == "" {
		return nil, errors.New("esr: endpoint is required")
	}
	p := &Publisher{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish requests a signing request for actions. It does not retry.
func (p *Publisher) Publish(
	ctx context.Context,
	batchNum int,
	actions []action.Action,
) (*Result, error) {
	fail := func(status int, err error) (*Result, error) {
		return nil, &PublishError{Batch: batchNum, StatusCode: status, Err: err}
	}
	buf, err := json.Marshal(request{Actions: action.WireList(actions)})
	if err != nil {
		return fail(0, fmt.Errorf("encoding request: %w", err))
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.endpoint,
		bytes.NewReader(buf),
	)
	if err != nil {
		return fail(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fail(resp.StatusCode, errors.New(string(bodyBytes)))
	}
	var result Result
	if err := json.NewDecoder(
		io.LimitReader(resp.Body, maxResponseBytes),
	).Decode(&result); err != nil {
		return fail(0, fmt.Errorf("decoding response: %w", err))
	}
	if result.ESR == "" {
		return fail(0, errors.New("response has no signing request"))
	}
	return &result, nil
}
