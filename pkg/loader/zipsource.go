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
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/charset"
)

// codec cache key for the zip codec
const codecZip = "zip"

//
type zipCodec struct{}

func (z *zipCodec) Name() string { return codecZip }

//
func (z *zipCodec) open(r io.ReaderAt, size int64) (*zip.Reader, error) {
	return zip.NewReader(r, size)
}

// entryName decodes the name of a zip entry, and drops its directory part.
// Shift-JIS names may contain a backslash as trail byte, so the name is
// decoded before it is split.
func (z *zipCodec) entryName(f *zip.File) string {
	name := charset.DecodeName([]byte(f.Name))
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}

// NewZipSource returns a source for a zip archive.
func NewZipSource(file InputFile, env *Env) *ZipSource {
	return &ZipSource{file: file, env: env, tracks: trackTable{}}
}

// ZipSource installs the ALD archives contained in a zip archive. Audio track
// files in the archive are kept in memory.
type ZipSource struct {
	file    InputFile
	env     *Env
	tracks  trackTable
	entries []ResourceEntry
	hasMidi bool
}

//
func (s *ZipSource) Kind() Kind {
	return KindZip
}

//
func (s *ZipSource) StartLoad(ctx context.Context) error {

	c, err := s.env.Codecs.Get(ctx, codecZip,
		func(context.Context) (Codec, error) {
			return &zipCodec{}, nil
		})
	if err != nil {
		return extractionError("load codec", codecZip, err)
	}
	codec := c.(*zipCodec)

	in, err := s.file.Open()
	if err != nil {
		return extractionError("open", s.file.Name(), err)
	}
	defer in.Close()

	zr, err := codec.open(in, s.file.Size())
	if err != nil {
		return extractionError("open", s.file.Name(), err)
	}

	for _, zf := range zr.File {

		if err := ctx.Err(); err != nil {
			return extractionError("extract", s.file.Name(), err)
		}

		if zf.FileInfo().IsDir() {
			continue
		}

		name := codec.entryName(zf)
		track, isTrack := ParseTrack(name)

		if !isTrack && !IsALD(name) {
			log.WithField("entry", name).Debug("skipping zip entry")
			continue
		}

		data, err := readZipEntry(zf)
		if err != nil {
			return extractionError("extract", name, err)
		}

		if isTrack {
			s.tracks[track] = NewMemFile(name, data)
			continue
		}

		if err := s.env.Store.Write(name, data); err != nil {
			return extractionError("write", name, err)
		}

		log.WithFields(log.Fields{
			"file": name,
			"size": humanize.Bytes(uint64(len(data))),
		}).Info("extracted")

		if e, ok := ParseResource(name); ok {
			s.entries = append(s.entries, e)
		}
	}

	if len(s.entries) == 0 {
		return noGamedata("no ALD files found in %s", s.file.Name())
	}

	if err := finish(s.env, s.entries); err != nil {
		return err
	}

	s.hasMidi = hasMidi(s.entries)
	return nil
}

//
func readZipEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return data, nil
}

//
func (s *ZipSource) CDDA(ctx context.Context, track int) (InputFile, error) {
	return s.tracks.get(track)
}

// ReloadImage is a no-op, tracks of a zip archive are held in memory.
func (s *ZipSource) ReloadImage(ctx context.Context) error {
	return nil
}

//
func (s *ZipSource) HasMidi() bool {
	return s.hasMidi
}

//
func (s *ZipSource) Resources() []ResourceEntry {
	return s.entries
}

//
func (s *ZipSource) Tracks() []int {
	return s.tracks.numbers()
}
