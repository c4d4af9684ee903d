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
	"encoding/binary"
	"fmt"
	"io"
)

// offsets of user data within raw sectors
const (
	syncSize        = 12
	headerSize      = 4
	mode2SubHdrSize = 8
	modeByteOffset  = syncSize + 3
)

// NewImage returns an image reading from r, with tracks as described by
// layout.
func NewImage(r io.ReaderAt, layout *Layout) *Image {
	return &Image{r: r, layout: layout}
}

// Image is a disc image with a known track layout.
type Image struct {
	r      io.ReaderAt
	layout *Layout
}

//
func (i *Image) Layout() *Layout {
	return i.layout
}

//
func (i *Image) Track(n int) *Track {
	return i.layout.Track(n)
}

// ReadSector reads the user data of sector lba of data track t.
func (i *Image) ReadSector(t *Track, lba int64) ([]byte, error) {

	if t.IsAudio() {
		return nil, fmt.Errorf("track %d is not a data track", t.Number)
	}

	if lba < 0 || (t.Sectors > 0 && lba >= t.Sectors) {
		return nil, fmt.Errorf("sector %d out of range for track %d", lba, t.Number)
	}

	pos := t.Offset + lba*int64(t.SectorSize)

	if t.SectorSize == SectorSizeCooked {
		buf := make([]byte, SectorSizeCooked)
		if _, err := i.r.ReadAt(buf, pos); err != nil {
			return nil, err
		}
		return buf, nil
	}

	raw := make([]byte, SectorSizeRaw)
	if _, err := i.r.ReadAt(raw, pos); err != nil {
		return nil, err
	}

	// the mode byte in the sector header takes precedence over the layout
	start := syncSize + headerSize
	if raw[modeByteOffset] == 2 || (raw[modeByteOffset] != 1 && t.Type == Mode2) {
		start += mode2SubHdrSize
	}

	return raw[start : start+SectorSizeCooked], nil
}

// DataReader returns a reader for the user data of data track t, in which
// logical sectors are contiguous.
func (i *Image) DataReader(t *Track) io.ReaderAt {
	return &dataReader{image: i, track: t}
}

//
type dataReader struct {
	image *Image
	track *Track
}

//
func (d *dataReader) ReadAt(p []byte, off int64) (int, error) {

	n := 0

	for n < len(p) {
		lba := (off + int64(n)) / SectorSizeCooked
		skip := (off + int64(n)) % SectorSizeCooked
		sec, err := d.image.ReadSector(d.track, lba)
		if err != nil {
			if n > 0 {
				return n, io.EOF
			}
			return 0, err
		}
		n += copy(p[n:], sec[skip:])
	}

	return n, nil
}

// ReadAudio reads the PCM data of audio track t. Sub-channel data is dropped.
func (i *Image) ReadAudio(t *Track) ([]byte, error) {

	if !t.IsAudio() {
		return nil, fmt.Errorf("track %d is not an audio track", t.Number)
	}

	if t.Sectors < 0 {
		return nil, fmt.Errorf("track %d has negative length", t.Number)
	}

	if t.SectorSize < SectorSizeRaw {
		return nil, fmt.Errorf("track %d: invalid audio sector size %d",
			t.Number, t.SectorSize)
	}

	if t.SectorSize == SectorSizeRaw {
		buf := make([]byte, t.Sectors*SectorSizeRaw)
		n, err := i.r.ReadAt(buf, t.Offset)
		if err != nil && err != io.EOF {
			return nil, err
		}
		return buf[:n-n%4], nil
	}

	buf := make([]byte, 0, t.Sectors*SectorSizeRaw)
	sec := make([]byte, SectorSizeRaw)

	for s := int64(0); s < t.Sectors; s++ {
		if _, err := i.r.ReadAt(sec, t.Offset+s*int64(t.SectorSize)); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		buf = append(buf, sec...)
	}

	return buf, nil
}

// WAV wraps raw CD audio (16 bit signed little endian, stereo, 44.1kHz) into
// a RIFF WAVE container.
func WAV(pcm []byte) []byte {

	const (
		channels      = 2
		sampleRate    = 44100
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)

	le := binary.LittleEndian
	hdr := make([]byte, 44)

	copy(hdr[0:], "RIFF")
	le.PutUint32(hdr[4:], uint32(36+len(pcm)))
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	le.PutUint32(hdr[16:], 16)
	le.PutUint16(hdr[20:], 1) // PCM
	le.PutUint16(hdr[22:], channels)
	le.PutUint32(hdr[24:], sampleRate)
	le.PutUint32(hdr[28:], sampleRate*blockAlign)
	le.PutUint16(hdr[32:], blockAlign)
	le.PutUint16(hdr[34:], bitsPerSample)
	copy(hdr[36:], "data")
	le.PutUint32(hdr[40:], uint32(len(pcm)))

	return append(hdr, pcm...)
}
