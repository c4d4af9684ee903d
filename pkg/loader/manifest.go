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
)

const (
	// ManifestName is the name of the manifest file the engine reads at startup
	ManifestName = "xsystem35.gr"
	// RCName is the name of the auxiliary runtime configuration file
	RCName = ".xsys35rc"
	// SaveDir holds the save slot files
	SaveDir = "save"
	//
	SaveSlotCount = 26
)

/*
	BuildManifest renders the manifest for the given resource entries. Each
	entry yields one line in the given order, followed by one line per save
	slot A through Z. The save slot paths use the base name of the last entry.
*/
func BuildManifest(entries []ResourceEntry) string {

	var sb strings.Builder
	var basename string

	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
		basename = e.Basename
	}

	for ix := 0; ix < SaveSlotCount; ix++ {
		id := byte('A' + ix)
		sb.WriteString("Save")
		sb.WriteByte(id)
		sb.WriteString(" " + SaveDir + "/")
		sb.WriteString(basename)
		sb.WriteByte('s')
		sb.WriteByte(lower(id))
		sb.WriteString(".asd\n")
	}

	return sb.String()
}
