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
)

func TestParseResource(t *testing.T) {
	tests := []struct {
		name     string
		ok       bool
		typ      TypeTag
		slot     byte
		basename string
	}{
		{"GAME00S0.ALD", true, Scenario, '0', "GAME00"},
		{"gameSa.ald", true, Scenario, 'A', "game"},
		{"RANCEGA.ALD", true, Graphics, 'A', "RANCE"},
		{"XDB.ALD", true, Data, 'B', "X"},
		{"KICHIKUMA.ALD", true, Midi, 'A', "KICHIKU"},
		{"sysr1.ald", true, Resource, '1', "sys"},
		{"VOICEWB.ALD", true, Wave, 'B', "VOICE"},
		{"GAMEXA.ALD", false, 0, 0, ""},
		{"A.ALD", false, 0, 0, ""},
		{"", false, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := ParseResource(tt.name)
			assert.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.typ, e.Type)
			assert.Equal(t, tt.slot, e.Slot)
			assert.Equal(t, tt.basename, e.Basename)
			assert.Equal(t, tt.name, e.Filename)
		})
	}
}

func TestResourceEntryString(t *testing.T) {
	e, ok := ParseResource("GAME00S0.ALD")
	assert.True(t, ok)
	assert.Equal(t, "Scenario0 GAME00S0.ALD", e.String())
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		name  string
		track int
		ok    bool
	}{
		{"03.ogg", 3, true},
		{"game12.mp3", 12, true},
		{"7.wav", 7, true},
		{"TRACK05.WAV", 5, true},
		{"GAME00S0.ALD", 0, false},
		{"track.ogg", 0, false},
		{"03.flac", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, ok := ParseTrack(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.track, track)
		})
	}
}
