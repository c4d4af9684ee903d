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
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xelalexv/xsysloader/pkg/cache"
	"github.com/xelalexv/xsysloader/pkg/loader/cdimage"
)

const (
	codecCDImage = "cdimage"
	mountKey     = "image"
)

//
type mounted struct {
	file  File
	image *cdimage.Image
}

// NewCDImageSource returns a source for a disc image. metadata describes the
// track layout of the image, and may be nil for ISO images.
func NewCDImageSource(image, metadata InputFile, env *Env) *CDImageSource {
	return &CDImageSource{
		image:    image,
		metadata: metadata,
		env:      env,
		mounts:   cache.New[*mounted](),
	}
}

/*
	CDImageSource installs the game files found in the ISO9660 file system on
	the first track of a disc image. The image stays attached after install,
	audio tracks are read from it on demand.
*/
type CDImageSource struct {
	image    InputFile
	metadata InputFile
	env      *Env
	//
	mounts  *cache.Cache[*mounted]
	lock    sync.Mutex
	current *mounted
	//
	entries []ResourceEntry
	tracks  []int
	hasMidi bool
}

//
func (s *CDImageSource) Kind() Kind {
	return KindCDImage
}

//
func (s *CDImageSource) StartLoad(ctx context.Context) error {

	m, err := s.mount(ctx)
	if err != nil {
		return extractionError("mount", s.image.Name(), err)
	}

	data := m.image.Track(1)
	if data == nil || data.IsAudio() {
		return noGamedata("%s has no data track", s.image.Name())
	}

	fs, err := cdimage.OpenISO9660(m.image.DataReader(data))
	if err != nil {
		return extractionError("open file system", s.image.Name(), err)
	}

	files, err := findGameFiles(fs)
	if err != nil {
		return extractionError("read directory", s.image.Name(), err)
	}
	if len(files) == 0 {
		return noGamedata("no game data found in %s", s.image.Name())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.env.concurrency())

	for _, e := range files {
		e := e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := fs.ReadFile(e)
			if err != nil {
				return extractionError("extract", e.Name, err)
			}
			if err := s.env.Store.Write(e.Name, content); err != nil {
				return extractionError("write", e.Name, err)
			}
			log.WithFields(log.Fields{
				"file": e.Name,
				"size": humanize.Bytes(uint64(len(content))),
			}).Info("extracted")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return extractionError("extract", s.image.Name(), err)
	}

	for _, e := range files {
		if r, ok := ParseResource(e.Name); ok {
			s.entries = append(s.entries, r)
		}
	}

	if err := finish(s.env, s.entries); err != nil {
		return err
	}

	for _, n := range m.image.Layout().Numbers() {
		if m.image.Track(n).IsAudio() {
			s.tracks = append(s.tracks, n)
		}
	}

	s.hasMidi = hasMidi(s.entries)
	return nil
}

// findGameFiles returns the ALD files of the first directory containing any,
// looking at the root directory first, then at its sub-directories.
func findGameFiles(fs *cdimage.FS) ([]*cdimage.Entry, error) {

	root, err := fs.ReadDir(fs.Root())
	if err != nil {
		return nil, err
	}

	if files := aldFiles(root); len(files) > 0 {
		return files, nil
	}

	for _, d := range root {
		if !d.Dir {
			continue
		}
		entries, err := fs.ReadDir(d)
		if err != nil {
			return nil, err
		}
		if files := aldFiles(entries); len(files) > 0 {
			log.WithField("directory", d.Name).Debug("found game directory")
			return files, nil
		}
	}

	return nil, nil
}

//
func aldFiles(entries []*cdimage.Entry) []*cdimage.Entry {
	var ret []*cdimage.Entry
	for _, e := range entries {
		if !e.Dir && IsALD(e.Name) {
			ret = append(ret, e)
		}
	}
	return ret
}

// CDDA reads audio track number track from the image, as WAV.
func (s *CDImageSource) CDDA(ctx context.Context, track int) (InputFile, error) {

	m, err := s.mount(ctx)
	if err != nil {
		return nil, err
	}

	t := m.image.Track(track)
	if t == nil || !t.IsAudio() {
		return nil, fmt.Errorf("track %d: %w", track, ErrNoTrack)
	}

	pcm, err := m.image.ReadAudio(t)
	if err != nil {
		return nil, fmt.Errorf("cannot read track %d: %w", track, err)
	}

	return NewMemFile(fmt.Sprintf("%02d.wav", track), cdimage.WAV(pcm)), nil
}

// ReloadImage detaches from the image and attaches again.
func (s *CDImageSource) ReloadImage(ctx context.Context) error {

	s.lock.Lock()
	if s.current != nil {
		if err := s.current.file.Close(); err != nil {
			log.Warnf("error closing image: %v", err)
		}
		s.current = nil
	}
	s.mounts.Forget(mountKey)
	s.lock.Unlock()

	_, err := s.mount(ctx)
	return err
}

//
func (s *CDImageSource) mount(ctx context.Context) (*mounted, error) {
	return s.mounts.Get(ctx, mountKey, s.doMount)
}

//
func (s *CDImageSource) doMount(ctx context.Context) (*mounted, error) {

	c, err := s.env.Codecs.Get(ctx, codecCDImage,
		func(context.Context) (Codec, error) {
			return cdimage.NewCodec(), nil
		})
	if err != nil {
		return nil, err
	}
	codec := c.(*cdimage.Codec)

	var meta []byte
	var metaName string

	if s.metadata != nil {
		metaName = s.metadata.Name()
		if meta, err = ReadBlob(ctx, s.metadata); err != nil {
			return nil, err
		}
	}

	layout, err := codec.Layout(metaName, meta, s.image.Size())
	if err != nil {
		return nil, err
	}

	f, err := s.image.Open()
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"image":  s.image.Name(),
		"tracks": len(layout.Tracks),
	}).Info("mounted disc image")

	m := &mounted{file: f, image: cdimage.NewImage(f, layout)}

	s.lock.Lock()
	s.current = m
	s.lock.Unlock()

	return m, nil
}

//
func (s *CDImageSource) HasMidi() bool {
	return s.hasMidi
}

//
func (s *CDImageSource) Resources() []ResourceEntry {
	return s.entries
}

//
func (s *CDImageSource) Tracks() []int {
	return s.tracks
}

// Close detaches from the image.
func (s *CDImageSource) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.current == nil {
		return nil
	}
	err := s.current.file.Close()
	s.current = nil
	s.mounts.Forget(mountKey)
	return err
}
