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
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/cache"
	"github.com/xelalexv/xsysloader/pkg/store"
)

// Kind identifies the kind of a source
type Kind int

const (
	KindNone Kind = iota
	KindCDImage
	KindZip
	KindFile
)

//
func (k Kind) String() string {

	switch k {

	case KindNone:
		return "none"

	case KindCDImage:
		return "cdimage"

	case KindZip:
		return "zip"

	case KindFile:
		return "file"

	default:
		return "<unknown>"
	}
}

/*
	Source is an installable distribution. StartLoad is called once per
	instance and extracts the distribution into the store, finishing with the
	manifest. After a successful StartLoad, the source serves CD audio tracks
	for the runtime.
*/
type Source interface {
	//
	Kind() Kind
	// StartLoad extracts all resources into the store, and writes the manifest
	StartLoad(ctx context.Context) error
	// CDDA returns the audio of track, or ErrNoTrack if there is no such track
	CDDA(ctx context.Context, track int) (InputFile, error)
	// ReloadImage re-attaches to the original image or container
	ReloadImage(ctx context.Context) error
	// HasMidi is known after StartLoad completed
	HasMidi() bool
	// Resources lists the resource entries in manifest order
	Resources() []ResourceEntry
	// Tracks lists the available CD audio track numbers, ascending
	Tracks() []int
}

// Codec is an extraction codec that sources load lazily through the codec
// cache.
type Codec interface {
	Name() string
}

// Env holds what sources need for installing.
type Env struct {
	Store store.Store
	// Codecs is the cache through which extraction codecs are loaded
	Codecs *cache.Cache[Codec]
	// RC is the content of the auxiliary runtime configuration file
	RC []byte
	// Concurrency bounds the number of files extracted in parallel
	Concurrency int
}

//
func (e *Env) concurrency() int {
	if e.Concurrency < 1 {
		return 1
	}
	return e.Concurrency
}

// NewSource creates the source for a classification result.
func NewSource(sel *Selection, env *Env) (Source, error) {

	switch sel.Kind {

	case KindCDImage:
		return NewCDImageSource(sel.Image, sel.Metadata, env), nil

	case KindZip:
		return NewZipSource(sel.Files[0], env), nil

	case KindFile:
		return NewFileSource(sel.Files, env), nil

	default:
		return nil, ErrUnrecognizedFormat
	}
}

/*
	finish writes manifest and runtime configuration once all resources have
	been stored. It is the common final step of all sources.
*/
func finish(env *Env, entries []ResourceEntry) error {

	if len(entries) == 0 {
		return noGamedata("no game data found")
	}

	if err := env.Store.Mkdir(SaveDir); err != nil {
		return extractionError("create", SaveDir, err)
	}

	if err := env.Store.Write(RCName, env.RC); err != nil {
		return extractionError("write", RCName, err)
	}

	if err := env.Store.Write(ManifestName, []byte(BuildManifest(entries))); err != nil {
		return extractionError("write", ManifestName, err)
	}

	log.WithField("entries", len(entries)).Info("manifest written")
	return nil
}

// trackTable holds CD audio tracks supplied as individual files.
type trackTable map[int]InputFile

//
func (t trackTable) get(track int) (InputFile, error) {
	if f, ok := t[track]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("track %d: %w", track, ErrNoTrack)
}

//
func (t trackTable) numbers() []int {
	ret := make([]int, 0, len(t))
	for n := range t {
		ret = append(ret, n)
	}
	sort.Ints(ret)
	return ret
}
