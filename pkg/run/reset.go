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

package run

import (
	"fmt"
	"io"
)

//
func NewReset() *Reset {

	r := &Reset{}
	r.Runner = *NewRunner(
		"reset [-a|--address {address}] [-p|--port {port}]",
		"forget disc image and metadata files supplied so far",
		`
Use the reset command to make the daemon forget the disc image and metadata files
it remembers from earlier install commands. Afterwards, a zip archive or a set of
ALD files can be installed. An installed game is not affected.`,
		"", runnerHelpEpilogue, r.Run)

	r.AddBaseSettings()

	return r
}

//
type Reset struct {
	Runner
}

//
func (r *Reset) Run() error {

	r.ParseSettings()

	resp, err := r.apiCall("DELETE", "/selection", false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	msg, err := io.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Printf("%s", msg)
	return nil
}
