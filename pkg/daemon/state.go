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

package daemon

import (
	"fmt"
	"strings"
)

// InstallState is the state of the install coordinator.
type InstallState int

const (
	StateIdle InstallState = iota
	StateClassifying
	StateInstalling
	StateInstalled
	StateFailed
)

//
func (s InstallState) String() string {

	switch s {

	case StateIdle:
		return "idle"

	case StateClassifying:
		return "classifying"

	case StateInstalling:
		return "installing"

	case StateInstalled:
		return "installed"

	case StateFailed:
		return "failed"

	default:
		return "<unknown>"
	}
}

// Accepting reports whether a gesture submitted in this state is processed.
func (s InstallState) Accepting() bool {
	return s != StateInstalling && s != StateClassifying
}

//
func (s InstallState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

//
func (s *InstallState) UnmarshalText(text []byte) error {
	for x := StateIdle; x <= StateFailed; x++ {
		if x.String() == string(text) {
			*s = x
			return nil
		}
	}
	return fmt.Errorf("unknown state: %s", text)
}

// Result summarizes what happened to a submitted gesture.
type Result int

const (
	// ResultIgnored means the gesture had no effect, e.g. because an install
	// was in progress
	ResultIgnored Result = iota
	// ResultPending means files were recognized, but more are needed before
	// an install can start, e.g. the metadata file for a disc image
	ResultPending
	// ResultUnrecognized means no source matches the supplied files
	ResultUnrecognized
	//
	ResultInstalled
	//
	ResultFailed
)

//
func (r Result) String() string {

	switch r {

	case ResultIgnored:
		return "ignored"

	case ResultPending:
		return "pending"

	case ResultUnrecognized:
		return "unrecognized"

	case ResultInstalled:
		return "installed"

	case ResultFailed:
		return "failed"

	default:
		return "<unknown>"
	}
}

//
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

//
func (r *Result) UnmarshalText(text []byte) error {
	for x := ResultIgnored; x <= ResultFailed; x++ {
		if x.String() == string(text) {
			*r = x
			return nil
		}
	}
	return fmt.Errorf("unknown result: %s", text)
}

// Outcome is what the coordinator reports back for a submitted gesture.
type Outcome struct {
	Result  Result `json:"result"`
	Attempt string `json:"attempt,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	// Err is the cause of a failed install
	Err error `json:"-"`
}

//
func (o *Outcome) String() string {
	var sb strings.Builder
	sb.WriteString(o.Result.String())
	if o.Kind != "" {
		fmt.Fprintf(&sb, " [%s]", o.Kind)
	}
	if o.Message != "" {
		fmt.Fprintf(&sb, ": %s", o.Message)
	}
	return sb.String()
}

// Status is a snapshot of the coordinator.
type Status struct {
	State      InstallState      `json:"state"`
	Attempt    string            `json:"attempt,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	HasMidi    bool              `json:"hasMidi"`
	Resources  int               `json:"resources"`
	Tracks     []int             `json:"tracks,omitempty"`
	Indicators map[string]string `json:"indicators,omitempty"`
	Notices    []string          `json:"notices,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// Equal compares two snapshots, for detecting changes.
func (s *Status) Equal(o *Status) bool {

	if s == nil || o == nil {
		return s == o
	}

	if s.State != o.State || s.Attempt != o.Attempt || s.Kind != o.Kind ||
		s.HasMidi != o.HasMidi || s.Resources != o.Resources ||
		s.Message != o.Message {
		return false
	}

	if len(s.Tracks) != len(o.Tracks) || len(s.Notices) != len(o.Notices) ||
		len(s.Indicators) != len(o.Indicators) {
		return false
	}

	for ix := range s.Tracks {
		if s.Tracks[ix] != o.Tracks[ix] {
			return false
		}
	}

	for ix := range s.Notices {
		if s.Notices[ix] != o.Notices[ix] {
			return false
		}
	}

	for k, v := range s.Indicators {
		if o.Indicators[k] != v {
			return false
		}
	}

	return true
}
