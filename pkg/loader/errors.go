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
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat signals that no source matches the supplied files.
	ErrUnrecognizedFormat = errors.New("unrecognized format")
	// ErrNoTrack is returned for CD audio tracks a source does not have.
	ErrNoTrack = errors.New("no such track")
)

// NoGamedataError signals that a recognized container was opened, but did not
// contain installable resources. Its message is meant for the user.
type NoGamedataError struct {
	Msg string
}

//
func (e *NoGamedataError) Error() string {
	return e.Msg
}

//
func noGamedata(format string, params ...interface{}) error {
	return &NoGamedataError{Msg: fmt.Sprintf(format, params...)}
}

// ExtractionError is an I/O or decode failure while extracting a source.
type ExtractionError struct {
	Op   string
	File string
	Err  error
}

//
func (e *ExtractionError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

//
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// extractionError wraps err unless it already is one of the error kinds.
func extractionError(op, file string, err error) error {
	var ng *NoGamedataError
	var ee *ExtractionError
	if errors.As(err, &ng) || errors.As(err, &ee) {
		return err
	}
	return &ExtractionError{Op: op, File: file, Err: err}
}

// IsNoGamedata reports whether err is a NoGamedataError.
func IsNoGamedata(err error) bool {
	var ng *NoGamedataError
	return errors.As(err, &ng)
}
