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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is an opened input file.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// InputFile is a named blob as supplied by the user. It is immutable, and
// consumed by exactly one Source during an install attempt.
type InputFile interface {
	Name() string
	Size() int64
	Open() (File, error)
}

// NewDiskFile returns an input file for a file on the local file system. The
// name is the base name of path.
func NewDiskFile(path string) (InputFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory", path)
	}
	return &diskFile{path: path, size: info.Size()}, nil
}

//
type diskFile struct {
	path string
	size int64
}

func (f *diskFile) Name() string        { return filepath.Base(f.path) }
func (f *diskFile) Size() int64         { return f.size }
func (f *diskFile) Open() (File, error) { return os.Open(f.path) }
func (f *diskFile) Path() string        { return f.path }

// PathOf returns the path of f on the local file system, or an empty string
// if f does not live there.
func PathOf(f InputFile) string {
	if p, ok := f.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}

// NewMemFile returns an input file for in-memory data.
func NewMemFile(name string, data []byte) InputFile {
	return &memFile{name: name, data: data}
}

//
type memFile struct {
	name string
	data []byte
}

func (f *memFile) Name() string { return f.name }
func (f *memFile) Size() int64  { return int64(len(f.data)) }

func (f *memFile) Open() (File, error) {
	return &memReader{Reader: bytes.NewReader(f.data)}, nil
}

//
type memReader struct {
	*bytes.Reader
}

func (r *memReader) Close() error { return nil }

// ReadBlob reads the complete content of f into memory. The read is aborted
// once ctx is done.
func ReadBlob(ctx context.Context, f InputFile) ([]byte, error) {

	in, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", f.Name(), err)
	}
	defer in.Close()

	buf := bytes.NewBuffer(make([]byte, 0, f.Size()))
	if _, err := io.Copy(buf, &ctxReader{ctx: ctx, in: in}); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", f.Name(), err)
	}

	return buf.Bytes(), nil
}

// ReadText reads the complete content of f as text.
func ReadText(ctx context.Context, f InputFile) (string, error) {
	data, err := ReadBlob(ctx, f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

//
type ctxReader struct {
	ctx context.Context
	in  io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.in.Read(p)
}
