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
	"os/exec"
	"sync"

	log "github.com/sirupsen/logrus"
)

// RunDependency is the run dependency of the engine that is satisfied once
// the game files are installed.
const RunDependency = "gameFiles"

// engine flag for anti-aliased font rendering
const antialiasFlag = "-antialias"

/*
	EngineRuntime is the engine host. It holds back starting the engine until
	its run dependency is removed. Without a command, removing the dependency
	is only logged. The engine is started at most once, later installs replace
	the files it reads from the store.
*/
type EngineRuntime struct {
	// Command is the engine command line
	Command []string
	// Dir is the working directory of the engine, usually the store root
	Dir       string
	Antialias bool
	//
	lock    sync.Mutex
	started bool
	cmd     *exec.Cmd
	done    chan struct{}
}

//
func (r *EngineRuntime) RemoveRunDependency(name string) error {

	log.WithField("dependency", name).Info("removing run dependency")

	if name != RunDependency {
		return fmt.Errorf("unknown run dependency: %s", name)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.started || len(r.Command) == 0 {
		return nil
	}

	args := append([]string{}, r.Command[1:]...)
	if r.Antialias {
		args = append(args, antialiasFlag)
	}

	cmd := exec.Command(r.Command[0], args...)
	cmd.Dir = r.Dir
	out := log.StandardLogger().WriterLevel(log.DebugLevel)
	cmd.Stdout = out
	cmd.Stderr = out

	log.WithFields(log.Fields{
		"command": r.Command[0],
		"args":    args,
		"dir":     r.Dir,
	}).Info("starting engine")

	if err := cmd.Start(); err != nil {
		out.Close()
		return fmt.Errorf("cannot start engine: %w", err)
	}

	r.started = true
	r.cmd = cmd
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		defer out.Close()
		if err := cmd.Wait(); err != nil {
			log.Errorf("engine exited: %v", err)
		} else {
			log.Info("engine exited")
		}
	}()

	return nil
}

// Started reports whether the engine has been started.
func (r *EngineRuntime) Started() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.started
}

// Wait waits for a started engine to exit.
func (r *EngineRuntime) Wait() {
	r.lock.Lock()
	done := r.done
	r.lock.Unlock()
	if done != nil {
		<-done
	}
}
