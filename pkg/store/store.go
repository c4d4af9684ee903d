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

package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// ErrLocked is returned by Lock when another process is installing into the
// same store.
var ErrLocked = errors.New("store is locked by another installer")

// Store is the virtual store the engine runtime reads its assets from.
type Store interface {
	// Write creates or replaces the file name with data
	Write(name string, data []byte) error
	// Mkdir creates directory path, tolerating that it already exists
	Mkdir(path string) error
	//
	Remove(name string) error
	//
	ReadFile(name string) ([]byte, error)
}

// NewDir creates a store backed by directory root, creating root if needed.
func NewDir(root string) (*Dir, error) {

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("cannot create store directory: %w", err)
	}

	log.WithField("root", abs).Info("using store")
	return &Dir{root: abs, lock: flock.New(abs + ".lock")}, nil
}

// Dir is a Store backed by a directory on the local file system.
type Dir struct {
	root string
	lock *flock.Flock
}

//
func (d *Dir) Root() string {
	return d.root
}

/*
	Lock acquires the install lock for this store. The lock is a file lock next
	to the store directory, so installers in other processes are kept out as
	well. Lock does not block, it returns ErrLocked if the lock is held.
*/
func (d *Dir) Lock() error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

//
func (d *Dir) Unlock() error {
	return d.lock.Unlock()
}

// Write writes data to a temporary file first and renames it into place once
// it is synced, so readers never see a partially written file. The temporary
// file is removed if anything fails.
func (d *Dir) Write(name string, data []byte) (err error) {

	path, err := d.path(name)
	if err != nil {
		return err
	}

	fd, err := os.CreateTemp(filepath.Dir(path), ".xsys-*")
	if err != nil {
		return err
	}

	tmp := fd.Name()
	defer func() {
		if err != nil {
			fd.Close()
			if e := os.Remove(tmp); e != nil && !os.IsNotExist(e) {
				log.Warnf("cannot remove temporary file %s: %v", tmp, e)
			}
		}
	}()

	out := bufio.NewWriter(fd)

	if _, err = out.Write(data); err != nil {
		return err
	}

	if err = out.Flush(); err != nil {
		return err
	}

	if err = fd.Chmod(0644); err != nil {
		return err
	}

	if err = fd.Sync(); err != nil {
		return err
	}

	if err = fd.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmp, path); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"file": name,
		"size": humanize.Bytes(uint64(len(data))),
	}).Debug("stored file")

	return nil
}

//
func (d *Dir) Mkdir(path string) error {
	p, err := d.path(path)
	if err != nil {
		return err
	}
	if err := os.Mkdir(p, 0755); err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}

// Remove removes file name, ignoring that it does not exist.
func (d *Dir) Remove(name string) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

//
func (d *Dir) ReadFile(name string) ([]byte, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

//
func (d *Dir) path(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("invalid store path: '%s'", name)
	}
	return filepath.Join(d.root, name), nil
}
