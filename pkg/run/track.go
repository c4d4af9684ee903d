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

	"github.com/dustin/go-humanize"
)

//
func NewTrack() *Track {

	t := &Track{}
	t.Runner = *NewRunner(
		"track -t|--track {number} -o|--output {file} [-f|--force] [-p|--port {port}]",
		"get CD audio track of installed game",
		"\nUse the track command to get a CD audio track of the installed game from the daemon.",
		"", `- Tracks of disc images are delivered as WAV files, tracks supplied as
  individual files are delivered as is.

`+runnerHelpEpilogue, t.Run)

	t.AddBaseSettings()
	t.AddSetting(&t.Number, "track", "t", "", nil, "track number", true)
	t.AddSetting(&t.File, "output", "o", "", nil, "track output file", true)
	t.AddSetting(&t.Force, "force", "f", "", false,
		"force overwriting output file", false)

	return t
}

//
type Track struct {
	//
	Runner
	//
	Number int
	File   string
	Force  bool
}

//
func (t *Track) Run() error {

	t.ParseSettings()

	if t.Number < 1 {
		return fmt.Errorf("invalid track number: %d", t.Number)
	}

	if !t.Force {
		if _, err := os.Stat(t.File); err == nil &&
			!GetUserConfirmation("File exists, overwrite?") {
			return nil
		}
	}

	resp, err := t.apiCall("GET", fmt.Sprintf("/cdda/%d", t.Number), false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	f, err := os.Create(t.File)
	if err != nil {
		return err
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	n, err := io.Copy(out, resp)
	if err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}

	fmt.Printf("track %d saved, %s\n", t.Number, humanize.Bytes(uint64(n)))
	return nil
}
