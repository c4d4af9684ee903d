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
func NewStatus() *Status {

	s := &Status{}
	s.Runner = *NewRunner(
		"status [-w|--watch] [-a|--address {address}] [-p|--port {port}]",
		"get install status from daemon",
		`
Use the status command to get the install status from the daemon. With the watch flag,
the command keeps running and prints the status whenever it changes.`,
		"", runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.Watch, "watch", "w", "", false, "watch for changes", false)

	return s
}

//
type Status struct {
	Runner
	//
	Watch bool
}

//
func (s *Status) Run() error {

	s.ParseSettings()

	if err := s.print("/status"); err != nil || !s.Watch {
		return err
	}

	for {
		if err := s.print("/watch?timeout=600"); err != nil {
			return err
		}
	}
}

//
func (s *Status) print(path string) error {

	resp, err := s.apiCall("GET", path, false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	stat, err := io.ReadAll(resp)
	if err != nil {
		return err
	}

	if len(stat) > 1 {
		fmt.Printf("%s", stat)
	}
	return nil
}
