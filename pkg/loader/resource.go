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
	"regexp"
	"strconv"
	"strings"
)

// TypeTag is the kind of a resource archive, as encoded in its file name.
type TypeTag int

const (
	Data TypeTag = iota
	Graphics
	Midi
	Resource
	Scenario
	Wave
)

//
func (t TypeTag) String() string {

	switch t {

	case Data:
		return "Data"

	case Graphics:
		return "Graphics"

	case Midi:
		return "Midi"

	case Resource:
		return "Resource"

	case Scenario:
		return "Scenario"

	case Wave:
		return "Wave"

	default:
		return "<unknown>"
	}
}

//
func typeTagForChar(c byte) (TypeTag, bool) {

	switch c {

	case 'd':
		return Data, true

	case 'g':
		return Graphics, true

	case 'm':
		return Midi, true

	case 'r':
		return Resource, true

	case 's':
		return Scenario, true

	case 'w':
		return Wave, true

	default:
		return 0, false
	}
}

// ResourceEntry is a resource file of a distribution, as listed in the
// manifest.
type ResourceEntry struct {
	Type     TypeTag
	Slot     byte
	Filename string
	// Basename is the name shared by all resource files of a distribution
	Basename string
}

// ParseResource derives a resource entry from a file name such as
// GAME00S0.ALD. The type character is the sixth, the slot the fifth character
// from the end. Names that do not follow this convention are rejected.
func ParseResource(name string) (ResourceEntry, bool) {

	if len(name) < 6 {
		return ResourceEntry{}, false
	}

	typ, ok := typeTagForChar(lower(name[len(name)-6]))
	if !ok {
		return ResourceEntry{}, false
	}

	return ResourceEntry{
		Type:     typ,
		Slot:     upper(name[len(name)-5]),
		Filename: name,
		Basename: name[:len(name)-6],
	}, true
}

// String renders the entry as manifest line.
func (e ResourceEntry) String() string {
	return e.Type.String() + string(e.Slot) + " " + e.Filename
}

//
var trackPattern = regexp.MustCompile(`(\d+)\.(wav|mp3|ogg)$`)

// ParseTrack returns the CD audio track number encoded in name, if name
// designates an audio track, e.g. 03.ogg or game12.mp3.
func ParseTrack(name string) (int, bool) {
	m := trackPattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, false
	}
	track, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return track, true
}

// IsALD reports whether name is a resource archive of the ALD set format.
func IsALD(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".ald")
}

//
func hasMidi(entries []ResourceEntry) bool {
	for _, e := range entries {
		if e.Type == Midi {
			return true
		}
	}
	return false
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
