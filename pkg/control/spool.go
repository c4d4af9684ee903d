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
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/loader"
)

//
const uploadPrefix = "upload-"

// newUploads returns the upload directories below spool.
func newUploads(spool string) *uploads {
	return &uploads{spool: spool, active: map[string]bool{}}
}

/*
	uploads keeps track of the upload directories in the spool directory. An
	upload directory is active while its request is being handled. Once done,
	it stays on disk only as long as one of its files is still referenced by
	the coordinator.
*/
type uploads struct {
	spool  string
	lock   sync.Mutex
	active map[string]bool
}

// create makes a new active upload directory.
func (u *uploads) create() (string, error) {

	if err := os.MkdirAll(u.spool, 0755); err != nil {
		return "", fmt.Errorf("cannot create spool directory: %w", err)
	}

	u.lock.Lock()
	defer u.lock.Unlock()

	dir, err := os.MkdirTemp(u.spool, uploadPrefix)
	if err != nil {
		return "", fmt.Errorf("cannot create upload directory: %w", err)
	}
	u.active[filepath.Clean(dir)] = true

	return dir, nil
}

//
func (u *uploads) release(dir string) {
	u.lock.Lock()
	delete(u.active, filepath.Clean(dir))
	u.lock.Unlock()
}

// sweep removes all upload directories that are neither active nor hold one
// of the referenced files.
func (u *uploads) sweep(referenced []loader.InputFile) {

	keep := map[string]bool{}
	for _, f := range referenced {
		if p := loader.PathOf(f); p != "" {
			keep[filepath.Clean(filepath.Dir(p))] = true
		}
	}

	dirs, err := filepath.Glob(filepath.Join(u.spool, uploadPrefix+"*"))
	if err != nil {
		log.Warnf("cannot list spool directory: %v", err)
		return
	}

	u.lock.Lock()
	defer u.lock.Unlock()

	for _, d := range dirs {
		d = filepath.Clean(d)
		if u.active[d] || keep[d] {
			continue
		}
		if err := os.RemoveAll(d); err != nil {
			log.Warnf("cannot remove upload %s: %v", d, err)
			continue
		}
		log.WithField("directory", d).Debug("removed upload")
	}
}
