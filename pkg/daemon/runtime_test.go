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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRuntimeWithoutCommand(t *testing.T) {
	r := &EngineRuntime{}
	require.NoError(t, r.RemoveRunDependency(RunDependency))
	assert.False(t, r.Started())
	r.Wait()
}

func TestEngineRuntimeUnknownDependency(t *testing.T) {
	r := &EngineRuntime{}
	assert.Error(t, r.RemoveRunDependency("fonts"))
}

func TestEngineRuntimeStartsOnce(t *testing.T) {
	dir := t.TempDir()
	r := &EngineRuntime{
		Command:   []string{"sh", "-c", `printf '%s\n' "$@" >> args`, "engine"},
		Dir:       dir,
		Antialias: true,
	}

	require.NoError(t, r.RemoveRunDependency(RunDependency))
	assert.True(t, r.Started())
	require.NoError(t, r.RemoveRunDependency(RunDependency))
	r.Wait()

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	require.NoError(t, err)
	assert.Equal(t, "-antialias\n", string(args))
}

func TestEngineRuntimeBadCommand(t *testing.T) {
	r := &EngineRuntime{Command: []string{filepath.Join(t.TempDir(), "none")}}
	assert.Error(t, r.RemoveRunDependency(RunDependency))
	assert.False(t, r.Started())
}
