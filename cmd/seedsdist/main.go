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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/seedsproject/seedsdist/internal/config"
	"github.com/seedsproject/seedsdist/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "seedsdist"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func commonRun() *slog.Logger {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	// Reports go to stdout, so logs go to stderr
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Debug(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	setBool := func(name string, dst *bool) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetBool(name)
		}
	}
	setString := func(name string, dst *string) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	setBool("flush-full", &cfg.FlushWhenFull)
	setBool("dedup-approvers", &cfg.DedupApprovers)
	setBool("skip-blank", &cfg.SkipBlankLines)
	setBool("tracing", &cfg.Tracing)
	setBool("tracing-stdout", &cfg.TracingStdout)
	setString("expiration", &cfg.ProposalExpiration)
	setString("journal", &cfg.JournalPath)
	setString("metrics-file", &cfg.MetricsFile)
	setString("proposer", &cfg.Proposer)
	return err
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Publish batched token and voice redistributions as signing requests",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New("a subcommand is required")
		},
	}

	// Global flags
	pflags := rootCmd.PersistentFlags()
	pflags.BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	pflags.StringVar(&configFile, "config", "", "path to config file")
	pflags.Int("batch-length", 0, "maximum records per batch (0 uses the configured length)")
	pflags.Bool("flush-full", false, "close a batch as soon as it holds batch-length records")
	pflags.Bool("dedup-approvers", false, "request each approver only once")
	pflags.String("expiration", "", "fixed proposal expiration (RFC3339)")
	pflags.String("proposer", "", "account proposing the multisig transactions")
	pflags.Bool("skip-blank", false, "skip blank lines in the ledger file")
	pflags.String("journal", "", "path to the sqlite journal of published batches")
	pflags.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	pflags.Bool("tracing", false, "enable OpenTelemetry tracing (OTLP/HTTP)")
	pflags.Bool("tracing-stdout", false, "write traces to stdout instead of OTLP")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(distributeCommand())
	rootCmd.AddCommand(voiceResetCommand())
	rootCmd.AddCommand(verifyCommand())
	rootCmd.AddCommand(reportCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

func main() {
	// Execute cobra command
	if err := newRootCommand().Execute(); err != nil {
		// NOTE: we purposely don't display the error, since cobra will have already displayed it
		os.Exit(1)
	}
}
