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


package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xelalexv/xsysloader/pkg/run"
)

//
var XSysLoaderVersion string

//
type executor interface {
	Execute(args []string) error
}

// client actions, each talking to a running daemon
var actions = map[string]func() executor{
	"install":  func() executor { return run.NewInstall() },
	"status":   func() executor { return run.NewStatus() },
	"track":    func() executor { return run.NewTrack() },
	"reload":   func() executor { return run.NewReload() },
	"reset":    func() executor { return run.NewReset() },
	"manifest": func() executor { return run.NewManifest() },
	"history":  func() executor { return run.NewHistory() },
}

//
func synopsis() {
	names := []string{"serve"}
	for a := range actions {
		names = append(names, a)
	}
	sort.Strings(names[1:])
	names = append(names, "version")

	fmt.Printf(`
synopsis: xsysctl {%s} ...

run 'xsysctl {action} -h|--help' to see detailed info

`, strings.Join(names, "|"))
}

//
func version() {
	fmt.Printf("\nXSysLoader %s\n\n", XSysLoaderVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "version":
		version()

	case "", "-h", "--help":
		synopsis()

	default:
		newAction, ok := actions[action]
		if !ok {
			run.Die("unknown action: %s", action)
		}
		run.DieOnError(newAction().Execute(args))
	}
}
