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
func NewReload() *Reload {

	r := &Reload{}
	r.Runner = *NewRunner(
		"reload [-a|--address {address}] [-p|--port {port}]",
		"re-attach daemon to disc image",
		`
Use the reload command to make the daemon re-attach to the disc image or archive of
the installed game, e.g. after the image file was replaced.`,
		"", runnerHelpEpilogue, r.Run)

	r.AddBaseSettings()

	return r
}

//
type Reload struct {
	Runner
}

//
func (r *Reload) Run() error {

	r.ParseSettings()

	resp, err := r.apiCall("PUT", "/reload", false, nil)
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
