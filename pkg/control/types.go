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

package control

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xelalexv/xsysloader/pkg/daemon"
)

// Status renders a coordinator status as text.
type Status struct {
	*daemon.Status
}

//
func (s *Status) String() string {

	var sb strings.Builder

	line := func(key, val string) {
		fmt.Fprintf(&sb, "%-11s%s\n", key+":", val)
	}

	sb.WriteString("\n")
	line("state", s.State.String())

	if s.Attempt != "" {
		line("attempt", s.Attempt)
	}

	if s.Kind != "" {
		line("source", s.Kind)
	}

	if s.State == daemon.StateInstalled {
		line("resources", strconv.Itoa(s.Resources))
		midi := "no"
		if s.HasMidi {
			midi = "yes"
		}
		line("midi", midi)
		line("tracks", trackList(s.Tracks))
	}

	indicators := make([]string, 0, len(s.Indicators))
	for k := range s.Indicators {
		indicators = append(indicators, k)
	}
	sort.Strings(indicators)
	for _, k := range indicators {
		line(k, s.Indicators[k])
	}

	for _, n := range s.Notices {
		line("notice", n)
	}

	if s.Message != "" {
		line("message", s.Message)
	}

	return sb.String()
}

//
func trackList(tracks []int) string {
	if len(tracks) == 0 {
		return "none"
	}
	ret := make([]string, len(tracks))
	for ix, t := range tracks {
		ret[ix] = strconv.Itoa(t)
	}
	return strings.Join(ret, ", ")
}
