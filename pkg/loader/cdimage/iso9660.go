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


package cdimage

import (
	"fmt"
	"io"
	"strings"

	"github.com/kdomanski/iso9660"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/charset"
)

// Entry is a file or directory within an ISO9660 file system.
type Entry struct {
	Name string
	Size int64
	Dir  bool
	//
	file *iso9660.File
}

// FS is a read-only ISO9660 file system. Only the primary volume descriptor
// is used.
type FS struct {
	root *Entry
}

// OpenISO9660 opens the file system in r, which presents the logical 2048
// byte blocks of a data track.
func OpenISO9660(r io.ReaderAt) (*FS, error) {

	img, err := iso9660.OpenImage(r)
	if err != nil {
		return nil, fmt.Errorf("not an ISO9660 file system: %w", err)
	}

	root, err := img.RootDir()
	if err != nil {
		return nil, fmt.Errorf("invalid root directory: %w", err)
	}

	log.Debug("opened ISO9660 file system")

	return &FS{root: &Entry{Name: "/", Dir: true, file: root}}, nil
}

//
func (fs *FS) Root() *Entry {
	return fs.root
}

// ReadDir lists directory dir, without the . and .. entries.
func (fs *FS) ReadDir(dir *Entry) ([]*Entry, error) {

	if !dir.Dir {
		return nil, fmt.Errorf("%s is not a directory", dir.Name)
	}

	children, err := dir.file.GetChildren()
	if err != nil {
		return nil, fmt.Errorf("directory %s: %w", dir.Name, err)
	}

	ret := make([]*Entry, 0, len(children))
	for _, c := range children {
		name := c.Name()
		if name == "" || name == "\x00" || name == "\x01" {
			continue
		}
		ret = append(ret, &Entry{
			Name: cleanName(name),
			Size: c.Size(),
			Dir:  c.IsDir(),
			file: c,
		})
	}

	return ret, nil
}

// ReadFile reads the content of file e.
func (fs *FS) ReadFile(e *Entry) ([]byte, error) {

	if e.Dir {
		return nil, fmt.Errorf("%s is a directory", e.Name)
	}

	data, err := io.ReadAll(e.file.Reader())
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", e.Name, err)
	}

	if int64(len(data)) != e.Size {
		return nil, fmt.Errorf("cannot read %s: truncated after %d of %d bytes",
			e.Name, len(data), e.Size)
	}

	return data, nil
}

// cleanName decodes a file identifier, and strips a remaining version suffix
// and trailing dot.
func cleanName(name string) string {
	name = charset.DecodeName([]byte(name))
	if ix := strings.LastIndex(name, ";"); ix > 0 {
		name = name[:ix]
	}
	return strings.TrimSuffix(name, ".")
}
