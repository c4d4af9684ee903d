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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIndicators map[string]string

func (r recordingIndicators) SetReady(indicator, name string) {
	r[indicator] = name
}

func memFiles(names ...string) []InputFile {
	var ret []InputFile
	for _, n := range names {
		ret = append(ret, NewMemFile(n, []byte(n)))
	}
	return ret
}

func TestClassifyISO(t *testing.T) {
	ind := recordingIndicators{}
	c := NewClassifier(ind)

	sel := c.Classify(memFiles("game.iso"))
	assert.Equal(t, KindCDImage, sel.Kind)
	assert.Equal(t, "game.iso", sel.Image.Name())
	assert.Nil(t, sel.Metadata)
	assert.Equal(t, "game.iso", ind[IndicatorImage])
}

func TestClassifyImageNeedsMetadata(t *testing.T) {
	ind := recordingIndicators{}
	c := NewClassifier(ind)

	sel := c.Classify(memFiles("game.img"))
	assert.Equal(t, KindNone, sel.Kind)
	assert.True(t, sel.Recognized)
	assert.Empty(t, sel.Unrecognized(memFiles("game.img")))

	sel = c.Classify(memFiles("game.cue"))
	require.Equal(t, KindCDImage, sel.Kind)
	assert.Equal(t, "game.img", sel.Image.Name())
	assert.Equal(t, "game.cue", sel.Metadata.Name())
	assert.Equal(t, "game.img", ind[IndicatorImage])
	assert.Equal(t, "game.cue", ind[IndicatorMetadata])
}

func TestClassifyImageTakesPrecedence(t *testing.T) {
	c := NewClassifier(nil)
	sel := c.Classify(memFiles("GAME00S0.ALD", "game.mdf", "game.mds"))
	assert.Equal(t, KindCDImage, sel.Kind)
}

func TestClassifyZip(t *testing.T) {
	c := NewClassifier(nil)
	sel := c.Classify(memFiles("game.ZIP"))
	assert.Equal(t, KindZip, sel.Kind)
	require.Len(t, sel.Files, 1)

	sel = NewClassifier(nil).Classify(memFiles("game.zip", "readme.txt"))
	assert.Equal(t, KindNone, sel.Kind)
}

func TestClassifyFiles(t *testing.T) {
	c := NewClassifier(nil)
	files := memFiles("GAME00S0.ALD", "GAME00G0.ALD", "02.ogg")
	sel := c.Classify(files)
	assert.Equal(t, KindFile, sel.Kind)
	assert.Equal(t, files, sel.Files)
}

func TestClassifyPendingMetadataBlocksFiles(t *testing.T) {
	c := NewClassifier(nil)
	c.Classify(memFiles("game.cue"))
	sel := c.Classify(memFiles("GAME00S0.ALD"))
	assert.Equal(t, KindNone, sel.Kind)

	c.Forget()
	sel = c.Classify(memFiles("GAME00S0.ALD"))
	assert.Equal(t, KindFile, sel.Kind)
}

func TestClassifierForgetClearsIndicators(t *testing.T) {
	ind := recordingIndicators{}
	c := NewClassifier(ind)

	img := memFiles("game.img")
	sel := c.Classify(append(img, memFiles("game.cue")...))
	require.Equal(t, KindCDImage, sel.Kind)
	assert.Len(t, sel.Inputs(), 2)
	assert.Len(t, c.Remembered(), 2)

	c.Forget()
	assert.Empty(t, c.Remembered())
	assert.Equal(t, "", ind[IndicatorImage])
	assert.Equal(t, "", ind[IndicatorMetadata])

	sel = c.Classify(memFiles("game.zip"))
	assert.Equal(t, KindZip, sel.Kind)
	assert.Len(t, sel.Inputs(), 1)
}

func TestClassifyRAR(t *testing.T) {
	c := NewClassifier(nil)
	files := memFiles("game.rar")
	sel := c.Classify(files)
	assert.Equal(t, KindNone, sel.Kind)
	assert.Equal(t, []string{NoticeRAR}, sel.Notices)
	assert.Empty(t, sel.Unrecognized(files))
}

func TestClassifyUnrecognized(t *testing.T) {
	c := NewClassifier(nil)
	files := memFiles("notes.txt", "other.doc")
	sel := c.Classify(files)
	assert.Equal(t, KindNone, sel.Kind)
	assert.False(t, sel.Recognized)
	assert.Equal(t, "notes.txt is in an unrecognized format",
		sel.Unrecognized(files))
}
