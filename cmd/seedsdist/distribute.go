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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/seedsproject/seedsdist/batch"
	"github.com/seedsproject/seedsdist/chainrpc"
	"github.com/seedsproject/seedsdist/distribution"
	"github.com/seedsproject/seedsdist/esr"
	"github.com/seedsproject/seedsdist/internal/config"
	"github.com/seedsproject/seedsdist/internal/telemetry"
	"github.com/seedsproject/seedsdist/internal/version"
	"github.com/seedsproject/seedsdist/journal"
	"github.com/seedsproject/seedsdist/ledgerfile"
	"github.com/seedsproject/seedsdist/msig"
	"github.com/spf13/cobra"
)

type distributionKind int

const (
	kindToken distributionKind = iota
	kindVoice
)

// runRequest carries the per-invocation inputs of a distribution command
type runRequest struct {
	kind        distributionKind
	path        string
	direct      bool
	batchLength int
	now         time.Time
}

// pipelineOptions builds the file, batching and naming options shared by
// distribute, voicereset and verify
func pipelineOptions(
	cfg *config.Config,
	req runRequest,
	logger *slog.Logger,
) (distribution.Options, error) {
	opts := distribution.Options{
		Logger:         logger,
		Path:           req.path,
		SkipBlankLines: cfg.SkipBlankLines,
		Namer:          cfg.Namer(),
		Mode:           distribution.ModeMultisig,
	}
	if req.direct {
		opts.Mode = distribution.ModeDirect
	}
	opts.Batch.Flush = cfg.Flush()
	switch req.kind {
	case kindToken:
		vestingDate, err := cfg.LockVestingDate()
		if err != nil {
			return opts, err
		}
		opts.Schema = ledgerfile.TokenSchema
		opts.Batch.MaxLength = cfg.TokenBatchLength
		opts.Batch.Plan = batch.TokenPlan{
			TokenContract:  cfg.TokenContract,
			EscrowContract: cfg.EscrowContract,
			Authority:      cfg.Authority,
			Symbol:         cfg.Symbol,
			Precision:      cfg.Precision,
			LockAction:     cfg.LockAction,
			LockType:       cfg.LockType,
			TriggerEvent:   cfg.TriggerEvent,
			TriggerSource:  cfg.TriggerSource,
			VestingDate:    vestingDate,
			Memo:           cfg.Memo,
		}
	case kindVoice:
		opts.Schema = ledgerfile.VoiceSchema
		opts.Batch.MaxLength = cfg.VoiceBatchLength
		opts.Batch.Plan = batch.VoicePlan{
			Contract:   cfg.VoiceContract,
			ActionName: cfg.VoiceAction,
			Authority:  cfg.VoiceAuthority,
			Precision:  cfg.Precision,
		}
	default:
		return opts, fmt.Errorf("unknown distribution kind %d", req.kind)
	}
	if req.batchLength > 0 {
		opts.Batch.MaxLength = req.batchLength
	}
	return opts, nil
}

// controlledAccount is the account whose active permission approves proposals
func controlledAccount(cfg *config.Config, kind distributionKind) string {
	if kind == kindVoice {
		return cfg.VoiceAuthority
	}
	return cfg.Authority
}

func runDistribution(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	req runRequest,
	out io.Writer,
) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.ESREndpoint == "" {
		return errors.New("esrEndpoint is required")
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	if cfg.Tracing {
		shutdown, err := telemetry.Setup(ctx, telemetry.Options{
			ServiceName:    programName,
			ServiceVersion: version.GetVersionString(),
			Stdout:         cfg.TracingStdout,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
		}()
	}
	opts, err := pipelineOptions(cfg, req, logger)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	opts.Metrics = distribution.NewMetrics(registry)
	if cfg.MetricsFile != "" {
		defer func() {
			if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
				logger.Error("failed to write metrics file", "error", err)
			}
		}()
	}
	opts.Publisher, err = esr.NewPublisher(cfg.ESREndpoint, esr.WithTimeout(timeout))
	if err != nil {
		return err
	}
	if opts.Mode == distribution.ModeMultisig {
		if cfg.Proposer == "" {
			return errors.New("proposer is required for multisig proposals")
		}
		now := req.now
		if now.IsZero() {
			now = time.Now()
		}
		expiration, err := cfg.Expiration(now)
		if err != nil {
			return err
		}
		client := chainrpc.NewClient(cfg.ChainURL, chainrpc.WithTimeout(timeout))
		builder, err := msig.NewBuilder(msig.BuilderConfig{
			Logger:         logger,
			Accounts:       client,
			Serializer:     client,
			Proposer:       cfg.Proposer,
			Controlled:     controlledAccount(cfg, req.kind),
			Namer:          cfg.Namer(),
			Expiration:     expiration,
			DedupApprovers: cfg.DedupApprovers,
		})
		if err != nil {
			return err
		}
		opts.Proposer = builder
	}
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath, logger)
		if err != nil {
			return err
		}
		defer j.Close()
		opts.Journal = j
	}
	report, err := distribution.Run(ctx, opts)
	if report != nil {
		if perr := report.Print(out); perr != nil {
			logger.Error("failed to print report", "error", perr)
		}
	}
	return err
}

func distributionCommand(
	use string,
	short string,
	kind distributionKind,
) *cobra.Command {
	var direct bool
	cmd := &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			batchLength, err := cmd.Flags().GetInt("batch-length")
			if err != nil {
				return err
			}
			logger := commonRun()
			ctx, stop := signal.NotifyContext(
				cmd.Context(),
				os.Interrupt,
				syscall.SIGTERM,
			)
			defer stop()
			if err := runDistribution(ctx, cfg, logger, runRequest{
				kind:        kind,
				path:        args[0],
				direct:      direct,
				batchLength: batchLength,
			}, cmd.OutOrStdout()); err != nil {
				logger.Error(err.Error())
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "publish the raw batch actions instead of multisig proposals")
	return cmd
}

func distributeCommand() *cobra.Command {
	return distributionCommand(
		"distribute",
		"Distribute tokens from a tab-separated ledger file",
		kindToken,
	)
}

func voiceResetCommand() *cobra.Command {
	return distributionCommand(
		"voicereset",
		"Reset voice balances from a comma-separated file",
		kindVoice,
	)
}
