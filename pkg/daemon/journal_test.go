/*
   XSysLoader - game asset installer for the xsystem35 runtime
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of XSysLoader.

   XSysLoader is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   XSysLoader is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with XSysLoader. If not, see <http://www.gnu.org/licenses/>.
*/

package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path)
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	for ix, id := range []string{"a", "b", "c"} {
		a := &Attempt{
			ID:      id,
			Started: start.Add(time.Duration(ix) * time.Minute),
			Kind:    "zip",
			Files:   []string{"game.zip"},
			Result:  StateInstalling.String(),
		}
		require.NoError(t, j.Begin(ctx, a))
		if id != "c" {
			a.Finished = a.Started.Add(time.Second)
			a.Result = ResultInstalled.String()
			a.Entries = 5
			require.NoError(t, j.Finish(ctx, a))
		}
	}

	recent, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, StateInstalling.String(), recent[0].Result)
	assert.True(t, recent[0].Finished.IsZero())

	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, 5, recent[1].Entries)
	assert.Equal(t, []string{"game.zip"}, recent[1].Files)
	assert.True(t, start.Add(time.Minute).Equal(recent[1].Started))
	assert.True(t, start.Add(time.Minute+time.Second).Equal(recent[1].Finished))

	require.NoError(t, j.Close())

	// reopening keeps the history
	j, err = OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()
	recent, err = j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestJournalDuplicateAttempt(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	a := &Attempt{ID: "x", Started: time.Now(), Kind: "file"}
	require.NoError(t, j.Begin(context.Background(), a))
	assert.Error(t, j.Begin(context.Background(), a))
}
