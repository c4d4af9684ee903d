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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/xelalexv/xsysloader/pkg/daemon"
)

//
func NewHistory() *History {

	h := &History{}
	h.Runner = *NewRunner(
		"history [-l|--limit {n}] [-a|--address {address}] [-p|--port {port}]",
		"get install history from daemon",
		`
Use the history command to list the most recent install attempts. The daemon keeps
a history only when started with a journal file.`,
		"", runnerHelpEpilogue, h.Run)

	h.AddBaseSettings()
	h.AddSetting(&h.Limit, "limit", "l", "", 20,
		"maximum number of attempts to list", false)

	return h
}

//
type History struct {
	Runner
	//
	Limit int
}

//
func (h *History) Run() error {

	h.ParseSettings()

	resp, err := h.apiCall("GET", fmt.Sprintf("/history?limit=%d", h.Limit),
		true, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	attempts, err := decodeHistory(resp)
	if err != nil {
		return err
	}

	if len(attempts) == 0 {
		fmt.Println("no install attempts recorded")
		return nil
	}

	writeTable(os.Stdout,
		[]string{"STARTED", "KIND", "RESULT", "RESOURCES", "FILES", "MESSAGE"},
		historyRows(attempts, isTerminal(os.Stdout), time.Now()), 3)
	return nil
}

//
func decodeHistory(r io.Reader) ([]*daemon.Attempt, error) {
	var ret []*daemon.Attempt
	if err := json.NewDecoder(r).Decode(&ret); err != nil {
		return nil, fmt.Errorf("invalid history: %v", err)
	}
	return ret, nil
}

// historyRows renders attempts as table rows. Start times are relative to now
// when the rows are meant for people.
func historyRows(attempts []*daemon.Attempt, relative bool,
	now time.Time) [][]string {

	var rows [][]string

	for _, a := range attempts {
		started := a.Started.Format(time.RFC3339)
		if relative {
			started = humanize.RelTime(a.Started, now, "ago", "from now")
		}
		rows = append(rows, []string{
			started,
			a.Kind,
			a.Result,
			strconv.Itoa(a.Entries),
			strings.Join(a.Files, ", "),
			a.Message,
		})
	}

	return rows
}
