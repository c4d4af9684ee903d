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
	"context"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NewFileSource returns a source for loose resource files, such as a set of
// ALD archives, optionally accompanied by audio track files.
func NewFileSource(files []InputFile, env *Env) *FileSource {
	return &FileSource{files: files, env: env, tracks: trackTable{}}
}

// FileSource installs loose files. It has no container to re-attach to.
type FileSource struct {
	files   []InputFile
	env     *Env
	tracks  trackTable
	entries []ResourceEntry
	hasMidi bool
}

//
func (s *FileSource) Kind() Kind {
	return KindFile
}

/*
	StartLoad copies every file that is not an audio track into the store.
	Copies run concurrently, the manifest is written only after all of them
	completed. Audio track files are kept in the track table instead.
*/
func (s *FileSource) StartLoad(ctx context.Context) error {

	var extract []InputFile

	for _, f := range s.files {
		if track, ok := ParseTrack(f.Name()); ok {
			log.WithFields(log.Fields{
				"file":  f.Name(),
				"track": track,
			}).Debug("audio track")
			s.tracks[track] = f
			continue
		}
		extract = append(extract, f)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.env.concurrency())

	for _, f := range extract {
		f := f
		g.Go(func() error {
			data, err := ReadBlob(gctx, f)
			if err != nil {
				return extractionError("read", f.Name(), err)
			}
			if err := s.env.Store.Write(f.Name(), data); err != nil {
				return extractionError("write", f.Name(), err)
			}
			log.WithFields(log.Fields{
				"file": f.Name(),
				"size": humanize.Bytes(uint64(len(data))),
			}).Info("extracted")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range extract {
		e, ok := ParseResource(f.Name())
		if !ok {
			log.WithField("file", f.Name()).Warn(
				"file name does not denote a resource, not adding to manifest")
			continue
		}
		s.entries = append(s.entries, e)
	}

	if err := finish(s.env, s.entries); err != nil {
		return err
	}

	s.hasMidi = hasMidi(s.entries)
	return nil
}

//
func (s *FileSource) CDDA(ctx context.Context, track int) (InputFile, error) {
	return s.tracks.get(track)
}

//
func (s *FileSource) ReloadImage(ctx context.Context) error {
	return nil
}

//
func (s *FileSource) HasMidi() bool {
	return s.hasMidi
}

//
func (s *FileSource) Resources() []ResourceEntry {
	return s.entries
}

//
func (s *FileSource) Tracks() []int {
	return s.tracks.numbers()
}
