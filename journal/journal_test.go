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

package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.sqlite")
	j, err := Open(path, nil)
	require.NoError(t, err)
	ctx := context.Background()

	runID, err := j.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Empty(t, runID)

	for _, e := range []*Entry{
		{RunID: "run1", BatchNumber: 2, ProposalName: "redistb", Records: 2, SumCents: 400},
		{RunID: "run1", BatchNumber: 1, ProposalName: "redista", Records: 18, SumCents: 3600},
		{RunID: "run2", BatchNumber: 1, ProposalName: "redista", Records: 1, SumCents: 100},
	} {
		require.NoError(t, j.Record(ctx, e))
		assert.NotZero(t, e.ID)
	}

	entries, err := j.Entries(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].BatchNumber)
	assert.Equal(t, "redista", entries[0].ProposalName)
	assert.Equal(t, int64(3600), entries[0].SumCents)
	assert.False(t, entries[0].CreatedAt.IsZero())

	runID, err = j.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run2", runID)
	require.NoError(t, j.Close())

	// Entries survive reopening
	j, err = Open(path, nil)
	require.NoError(t, err)
	defer j.Close()
	entries, err = j.Entries(ctx, "run2")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJournalInMemory(t *testing.T) {
	j, err := Open("", nil)
	require.NoError(t, err)
	defer j.Close()
	ctx := context.Background()
	require.NoError(t, j.Record(ctx, &Entry{RunID: "r", BatchNumber: 1}))
	entries, err := j.Entries(ctx, "r")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
