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

package charset

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

/*
	DecodeName decodes a file name from an archive or disc image. Names are
	tried as strict UTF-8 first. Older Japanese distributions store names in
	Shift-JIS, so when the bytes are not valid UTF-8, they are decoded as
	Shift-JIS. If that fails as well, the raw name is returned.
*/
func DecodeName(raw []byte) string {

	if utf8.Valid(raw) {
		return string(raw)
	}

	name, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}

	return string(name)
}
