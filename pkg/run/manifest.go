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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

//
func NewManifest() *Manifest {

	m := &Manifest{}
	m.Runner = *NewRunner(
		"manifest [-r|--raw] [-a|--address {address}] [-p|--port {port}]",
		"get manifest of installed game",
		"\nUse the manifest command to list the manifest of the installed game.",
		"", runnerHelpEpilogue, m.Run)

	m.AddBaseSettings()
	m.AddSetting(&m.Raw, "raw", "r", "", false,
		"print manifest as written to the store", false)

	return m
}

//
type Manifest struct {
	Runner
	//
	Raw bool
}

//
func (m *Manifest) Run() error {

	m.ParseSettings()

	resp, err := m.apiCall("GET", "/manifest", false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	if m.Raw {
		_, err := io.Copy(os.Stdout, resp)
		return err
	}

	rows, err := parseManifest(resp)
	if err != nil {
		return err
	}

	writeTable(os.Stdout, []string{"ENTRY", "FILE"}, rows)
	return nil
}

// parseManifest splits manifest lines into entry and file name.
func parseManifest(r io.Reader) ([][]string, error) {

	var rows [][]string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, file, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("invalid manifest line: %s", line)
		}
		rows = append(rows, []string{entry, file})
	}

	return rows, scanner.Err()
}
