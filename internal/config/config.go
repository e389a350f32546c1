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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/batch"
	"github.com/seedsproject/seedsdist/msig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "seedsdist.config"

const (
	envPrefix = "seedsdist"

	DefaultRequestTimeout = "30s"
	DefaultProposalExpiry = "168h"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	ChainURL       string `yaml:"chainUrl"       split_words:"true"`
	ESREndpoint    string `yaml:"esrEndpoint"    envconfig:"ESR_ENDPOINT"`
	RequestTimeout string `yaml:"requestTimeout" split_words:"true"`

	TokenContract  string `yaml:"tokenContract"  split_words:"true"`
	EscrowContract string `yaml:"escrowContract" split_words:"true"`
	Symbol         string `yaml:"symbol"`
	Precision      int    `yaml:"precision"`
	// Authority issues, transfers and sponsors locks for token distributions
	Authority string `yaml:"authority"`

	VoiceContract  string `yaml:"voiceContract"  split_words:"true"`
	VoiceAction    string `yaml:"voiceAction"    split_words:"true"`
	VoiceAuthority string `yaml:"voiceAuthority" split_words:"true"`

	LockAction    string `yaml:"lockAction"    split_words:"true"`
	LockType      string `yaml:"lockType"      split_words:"true"`
	TriggerEvent  string `yaml:"triggerEvent"  split_words:"true"`
	TriggerSource string `yaml:"triggerSource" split_words:"true"`
	// VestingDate is RFC3339, empty for event-only locks
	VestingDate string `yaml:"vestingDate" split_words:"true"`
	Memo        string `yaml:"memo"`

	Proposer         string `yaml:"proposer"`
	ProposalPrefix   string `yaml:"proposalPrefix"   split_words:"true"`
	ProposalTemplate string `yaml:"proposalTemplate" split_words:"true"`
	// ProposalExpiry is added to the start time of a run unless
	// ProposalExpiration fixes the expiration explicitly
	ProposalExpiry     string `yaml:"proposalExpiry"     split_words:"true"`
	ProposalExpiration string `yaml:"proposalExpiration" split_words:"true"`
	DedupApprovers     bool   `yaml:"dedupApprovers"     split_words:"true"`

	TokenBatchLength int  `yaml:"tokenBatchLength" split_words:"true"`
	VoiceBatchLength int  `yaml:"voiceBatchLength" split_words:"true"`
	FlushWhenFull    bool `yaml:"flushWhenFull"    split_words:"true"`
	SkipBlankLines   bool `yaml:"skipBlankLines"   split_words:"true"`

	JournalPath   string `yaml:"journalPath"   split_words:"true"`
	MetricsFile   string `yaml:"metricsFile"   split_words:"true"`
	Tracing       bool   `yaml:"tracing"`
	TracingStdout bool   `yaml:"tracingStdout" split_words:"true"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		ChainURL:         "http://127.0.0.1:8888",
		RequestTimeout:   DefaultRequestTimeout,
		TokenContract:    "token.seeds",
		EscrowContract:   "escrow.seeds",
		Symbol:           "SEEDS",
		Precision:        4,
		Authority:        "token.seeds",
		VoiceContract:    "funds.seeds",
		VoiceAction:      "testsetvoice",
		VoiceAuthority:   "funds.seeds",
		LockAction:       "lock",
		LockType:         "event",
		TriggerEvent:     "golive",
		TriggerSource:    "dao.hypha",
		ProposalPrefix:   msig.DefaultProposalPrefix,
		ProposalTemplate: msig.DefaultNameTemplate,
		ProposalExpiry:   DefaultProposalExpiry,
		TokenBatchLength: batch.DefaultTokenBatchLength,
		VoiceBatchLength: batch.DefaultVoiceBatchLength,
	}
}

// LoadConfig layers the defaults, the YAML config file and environment
// variables (SEEDSDIST_*), in that order
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		// Check for config file in this path: ~/.seedsdist/seedsdist.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".seedsdist", "seedsdist.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/seedsdist/seedsdist.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/seedsdist/seedsdist.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return cfg, nil
}

// Timeout returns the network request timeout
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout %q: %w", c.RequestTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("requestTimeout must be positive, got %s", d)
	}
	return d, nil
}

// Expiration returns the proposal expiration for a run starting at now
func (c *Config) Expiration(now time.Time) (time.Time, error) {
	if c.ProposalExpiration != "" {
		for _, layout := range []string{time.RFC3339, action.ExpirationFormat} {
			if t, err := time.Parse(layout, c.ProposalExpiration); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf(
			"invalid proposalExpiration %q",
			c.ProposalExpiration,
		)
	}
	d, err := time.ParseDuration(c.ProposalExpiry)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid proposalExpiry %q: %w", c.ProposalExpiry, err)
	}
	if d <= 0 {
		return time.Time{}, fmt.Errorf("proposalExpiry must be positive, got %s", d)
	}
	return now.Add(d).UTC().Truncate(time.Second), nil
}

// LockVestingDate returns the parsed vesting date, zero when unset
func (c *Config) LockVestingDate() (time.Time, error) {
	if c.VestingDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.VestingDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid vestingDate %q: %w", c.VestingDate, err)
	}
	return t, nil
}

// Namer returns the proposal namer
func (c *Config) Namer() msig.Namer {
	return msig.Namer{Prefix: c.ProposalPrefix, Template: c.ProposalTemplate}
}

// Flush returns the configured batch flush predicate
func (c *Config) Flush() batch.FlushPredicate {
	if c.FlushWhenFull {
		return batch.FlushWhenFull
	}
	return batch.FlushWhenOver
}

// Validate checks values that do not depend on the selected command
func (c *Config) Validate() error {
	var errs []error
	for field, name := range map[string]string{
		"tokenContract":  c.TokenContract,
		"escrowContract": c.EscrowContract,
		"authority":      c.Authority,
		"voiceContract":  c.VoiceContract,
		"voiceAction":    c.VoiceAction,
		"voiceAuthority": c.VoiceAuthority,
		"lockAction":     c.LockAction,
	} {
		if !action.ValidName(name) {
			errs = append(errs, fmt.Errorf("invalid %s name %q", field, name))
		}
	}
	if c.Proposer != "" && !action.ValidName(c.Proposer) {
		errs = append(errs, fmt.Errorf("invalid proposer name %q", c.Proposer))
	}
	if c.Symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	}
	if c.Precision < 0 || c.Precision > 18 {
		errs = append(errs, fmt.Errorf("invalid precision %d", c.Precision))
	}
	if c.TokenBatchLength < 1 {
		errs = append(errs, fmt.Errorf("invalid tokenBatchLength %d", c.TokenBatchLength))
	}
	if c.VoiceBatchLength < 1 {
		errs = append(errs, fmt.Errorf("invalid voiceBatchLength %d", c.VoiceBatchLength))
	}
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LockVestingDate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Namer().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
