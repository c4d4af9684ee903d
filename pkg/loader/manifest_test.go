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

package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestEntries(t *testing.T, names ...string) []ResourceEntry {
	var ret []ResourceEntry
	for _, n := range names {
		e, ok := ParseResource(n)
		require.True(t, ok, n)
		ret = append(ret, e)
	}
	return ret
}

func TestBuildManifest(t *testing.T) {

	m := BuildManifest(manifestEntries(t, "GAME00S0.ALD", "GAME00GA.ALD"))

	require.True(t, strings.HasSuffix(m, "\n"))
	lines := strings.Split(strings.TrimSuffix(m, "\n"), "\n")
	require.Len(t, lines, 2+SaveSlotCount)

	assert.Equal(t, "Scenario0 GAME00S0.ALD", lines[0])
	assert.Equal(t, "GraphicsA GAME00GA.ALD", lines[1])
	assert.Equal(t, "SaveA save/GAME00sa.asd", lines[2])
	assert.Equal(t, "SaveZ save/GAME00sz.asd", lines[len(lines)-1])
}

func TestBuildManifestDeterministic(t *testing.T) {
	entries := manifestEntries(t, "GAME00D0.ALD", "GAME00M0.ALD", "GAME00S0.ALD")
	assert.Equal(t, BuildManifest(entries), BuildManifest(entries))
}

func TestBuildManifestBasenameOfLastEntry(t *testing.T) {
	m := BuildManifest(manifestEntries(t, "FIRSTS0.ALD", "SECONDS1.ALD"))
	assert.Contains(t, m, "SaveB save/SECONDsb.asd\n")
	assert.NotContains(t, m, "save/FIRST")
}
