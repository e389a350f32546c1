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
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seedsproject/seedsdist/internal/config"
	"github.com/seedsproject/seedsdist/internal/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeLedger(t *testing.T, n int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("account\tname\tcurrent\tmultiplier\ttarget\n")
	for i := range n {
		fmt.Fprintf(&sb, "user%c\tName\t1.00\t2\t2.00\n", 'a'+i)
	}
	path := filepath.Join(t.TempDir(), "ledger.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func TestRootRequiresSubcommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})
	require.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), "distribute")
	assert.Contains(t, out.String(), "voicereset")
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "seedsdist "))
}

func TestApplyFlags(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--flush-full",
		"--journal", "/tmp/journal.sqlite",
		"--expiration", "2026-10-21T12:00:00Z",
		"--proposer", "proposer1",
	}))
	cfg := config.DefaultConfig()
	cfg.DedupApprovers = true
	require.NoError(t, applyFlags(cmd, cfg))
	assert.True(t, cfg.FlushWhenFull)
	assert.Equal(t, "/tmp/journal.sqlite", cfg.JournalPath)
	assert.Equal(t, "2026-10-21T12:00:00Z", cfg.ProposalExpiration)
	assert.Equal(t, "proposer1", cfg.Proposer)
	// Flags that were not given leave the config alone
	assert.True(t, cfg.DedupApprovers)
	assert.False(t, cfg.Tracing)
}

func TestRunDistributionAndReport(t *testing.T) {
	chain := testutil.NewFakeChain(t)
	chain.SetMultisigAccount("token.seeds", "guardian1", "guardian2")
	fakeESR := testutil.NewFakeESR(t)
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.ChainURL = chain.URL()
	cfg.ESREndpoint = fakeESR.URL()
	cfg.Proposer = "proposer1"
	cfg.JournalPath = filepath.Join(dir, "journal.sqlite")
	cfg.MetricsFile = filepath.Join(dir, "seedsdist.prom")

	var out bytes.Buffer
	err := runDistribution(context.Background(), cfg, discardLogger(), runRequest{
		kind: kindToken,
		path: writeLedger(t, 20),
		now:  time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "20 records in 2 batches, total 40.00")
	assert.Contains(t, out.String(), "esr://request-2")
	require.Len(t, fakeESR.Requests(), 2)

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "seedsdist_batches_published_total 2")
	assert.Contains(t, string(metrics), "seedsdist_records_processed_total 20")

	out.Reset()
	require.NoError(t, reportRun(context.Background(), cfg, discardLogger(), "", &out))
	assert.Contains(t, out.String(), "redista")
	assert.Contains(t, out.String(), "redistb")
	assert.Contains(t, out.String(), "36.00")
}

func TestRunDistributionDirectVoice(t *testing.T) {
	fakeESR := testutil.NewFakeESR(t)
	path := filepath.Join(t.TempDir(), "voice.csv")
	require.NoError(t, os.WriteFile(path, []byte("account,amount\nusera,1.50\nuserb,2.50\n"), 0o600))

	cfg := config.DefaultConfig()
	cfg.ESREndpoint = fakeESR.URL()
	var out bytes.Buffer
	err := runDistribution(context.Background(), cfg, discardLogger(), runRequest{
		kind:   kindVoice,
		path:   path,
		direct: true,
	}, &out)
	require.NoError(t, err)
	requests := fakeESR.Requests()
	require.Len(t, requests, 1)
	require.Len(t, requests[0], 2)
	assert.Equal(t, "funds.seeds", requests[0][0]["account"])
	assert.Equal(t, "testsetvoice", requests[0][0]["name"])
	data, ok := requests[0][0]["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "usera", data["user"])
	assert.InDelta(t, 15000, data["amount"], 0)
}

func TestRunDistributionRequiresProposer(t *testing.T) {
	fakeESR := testutil.NewFakeESR(t)
	cfg := config.DefaultConfig()
	cfg.ESREndpoint = fakeESR.URL()
	err := runDistribution(context.Background(), cfg, discardLogger(), runRequest{
		kind: kindToken,
		path: writeLedger(t, 2),
	}, io.Discard)
	require.ErrorContains(t, err, "proposer is required")
	assert.Empty(t, fakeESR.Requests())
}

func TestRunDistributionRequiresEndpoint(t *testing.T) {
	cfg := config.DefaultConfig()
	err := runDistribution(context.Background(), cfg, discardLogger(), runRequest{
		kind: kindToken,
		path: writeLedger(t, 2),
	}, io.Discard)
	require.ErrorContains(t, err, "esrEndpoint is required")
}

func TestVerifyRunBatchLength(t *testing.T) {
	var out bytes.Buffer
	err := verifyRun(config.DefaultConfig(), discardLogger(), runRequest{
		kind:        kindToken,
		path:        writeLedger(t, 20),
		batchLength: 4,
	}, &out)
	require.NoError(t, err)
	// Batches of five with the default flush predicate
	assert.Contains(t, out.String(), "20 records in 4 batches")
}

func TestReportRequiresJournal(t *testing.T) {
	err := reportRun(context.Background(), config.DefaultConfig(), discardLogger(), "", io.Discard)
	require.ErrorContains(t, err, "journalPath is required")

	cfg := config.DefaultConfig()
	cfg.JournalPath = filepath.Join(t.TempDir(), "journal.sqlite")
	err = reportRun(context.Background(), cfg, discardLogger(), "", io.Discard)
	require.ErrorContains(t, err, "journal has no runs")
}
