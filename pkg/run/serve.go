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
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/cache"
	"github.com/xelalexv/xsysloader/pkg/control"
	"github.com/xelalexv/xsysloader/pkg/daemon"
	"github.com/xelalexv/xsysloader/pkg/loader"
	"github.com/xelalexv/xsysloader/pkg/store"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve -s|--store {store folder} [-a|--address {address}] [-p|--port {port}]
      [-r|--repo {repo base folder}] [--spool {spool folder}] [--rc {file}]
      [--journal {file}] [--engine {command}] [--antialias] [-j|--jobs {n}]`,
		"daemon & API server command",
		`Use the serve command for running the installer daemon and API server. Game files
are installed into the store folder, from where the engine reads them. When an engine
command is given, the engine is started in the store folder once the first install
completed.`,
		"", `- Logging can be configured with these environment variables:

  LOG_FORMAT		set to 'json' for JSON logging
  LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
  LOG_METHODS		set to non-empty for including methods in log
  LOG_LEVEL		panic, fatal, error, warn, info, debug, trace

`+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.Store, "store", "s", "XSYS_STORE", nil,
		"store folder the engine reads game files from", true)
	s.AddSetting(&s.Spool, "spool", "", "XSYS_SPOOL", nil,
		"folder for uploaded files; defaults to a folder in the system's temp folder",
		false)
	s.AddSetting(&s.Repository, "repo", "r", "", nil,
		`game repo base folder; when omitted, installing from
daemon host's file system is prohibited`, false)
	s.AddSetting(&s.RC, "rc", "", "", nil,
		"file with engine configuration to install along with game files", false)
	s.AddSetting(&s.Journal, "journal", "", "XSYS_JOURNAL", nil,
		"database file for keeping the install history", false)
	s.AddSetting(&s.Engine, "engine", "", "XSYS_ENGINE", nil,
		"engine command line, started once game files are installed", false)
	s.AddSetting(&s.Antialias, "antialias", "", "", false,
		"start engine with anti-aliased font rendering", false)
	s.AddSetting(&s.Jobs, "jobs", "j", "", 4,
		"number of files to extract in parallel", false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Store      string
	Spool      string
	Repository string
	RC         string
	Journal    string
	Engine     string
	Antialias  bool
	Jobs       int
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	st, err := store.NewDir(s.Store)
	if err != nil {
		return err
	}

	var rc []byte
	if s.RC != "" {
		if rc, err = os.ReadFile(s.RC); err != nil {
			return fmt.Errorf("cannot read engine configuration: %v", err)
		}
	}

	spool := s.Spool
	if spool == "" {
		spool = filepath.Join(os.TempDir(), "xsysloader-spool")
	}

	var journal *daemon.Journal
	if s.Journal != "" {
		if journal, err = daemon.OpenJournal(s.Journal); err != nil {
			return err
		}
		defer journal.Close()
	}

	c := daemon.NewCoordinator(daemon.Config{
		Env: &loader.Env{
			Store:       st,
			Codecs:      cache.New[loader.Codec](),
			RC:          rc,
			Concurrency: s.Jobs,
		},
		Collaborators: daemon.Collaborators{
			Runtime: &daemon.EngineRuntime{
				Command:   strings.Fields(s.Engine),
				Dir:       st.Root(),
				Antialias: s.Antialias,
			},
		},
		Journal: journal,
	})

	wg := &sync.WaitGroup{}
	wg.Add(1)

	api := control.NewAPIServer(s.serverAddress(), s.Repository, spool, c)
	go func() {
		defer wg.Done()
		if err := api.Serve(); err != nil {
			log.Errorf("API server closed with error: %v", err)
		} else {
			log.Info("API server stopped")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sigCount := 0
	done := make(chan bool)

	for {

		select {

		case sig := <-sigs: // interrupt signal
			log.WithField("signal", sig).Info("signal received")
			sigCount++

			switch sigCount {

			case 1:
				go func() {
					log.Info("shutting down, hit Ctrl-C twice to force exit...")
					api.Stop()
					wg.Wait()
					log.Info("XSysLoader stopped")
					done <- true
				}()

			case 2:
				log.Warn("shutdown in progress, hit Ctrl-C again to force exit")

			default:
				log.Warn("forcing daemon to stop immediately")
				os.Exit(1)
			}

		case <-done: // shutdown sequence complete
			return nil
		}
	}
}
