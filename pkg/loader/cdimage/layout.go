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
	"bufio"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// frames per second of CD time codes
const framesPerSecond = 75

// SectorSize values found in images
const (
	SectorSizeCooked = 2048
	SectorSizeRaw    = 2352
	// raw sectors followed by 96 bytes of sub-channel data
	SectorSizeRawSub = 2448
)

// TrackType tells audio from data tracks
type TrackType int

const (
	Audio TrackType = iota
	Mode1
	Mode2
)

//
func (t TrackType) String() string {

	switch t {

	case Audio:
		return "audio"

	case Mode1:
		return "mode1"

	case Mode2:
		return "mode2"

	default:
		return "<unknown>"
	}
}

// Track describes where a logical track is located within an image.
type Track struct {
	Number     int
	Type       TrackType
	SectorSize int
	// byte offset of the first sector within the image
	Offset int64
	// number of sectors
	Sectors int64
}

//
func (t *Track) IsAudio() bool {
	return t.Type == Audio
}

// fit checks that t lies within an image of imageSize bytes, and caps its
// length at the sectors the image actually holds.
func (t *Track) fit(imageSize int64) error {

	if t.SectorSize <= 0 {
		return fmt.Errorf("track %d: invalid sector size %d", t.Number,
			t.SectorSize)
	}

	if t.Offset < 0 || t.Offset > imageSize {
		return fmt.Errorf("track %d starts outside of image", t.Number)
	}

	if t.Sectors < 0 {
		return fmt.Errorf("track %d has negative length", t.Number)
	}

	if avail := (imageSize - t.Offset) / int64(t.SectorSize); t.Sectors > avail {
		t.Sectors = avail
	}

	return nil
}

//
func (t *Track) String() string {
	return fmt.Sprintf("track %02d: %s, %d sectors of %d bytes at offset %d",
		t.Number, t.Type, t.Sectors, t.SectorSize, t.Offset)
}

// Layout is the track table of an image.
type Layout struct {
	Tracks map[int]*Track
}

//
func newLayout() *Layout {
	return &Layout{Tracks: map[int]*Track{}}
}

//
func (l *Layout) Track(n int) *Track {
	return l.Tracks[n]
}

// Numbers returns the track numbers in ascending order.
func (l *Layout) Numbers() []int {
	ret := make([]int, 0, len(l.Tracks))
	for n := range l.Tracks {
		ret = append(ret, n)
	}
	sort.Ints(ret)
	return ret
}

// ISOLayout is the layout of a plain ISO image, a single data track of cooked
// sectors.
func ISOLayout(imageSize int64) *Layout {
	l := newLayout()
	l.Tracks[1] = &Track{
		Number:     1,
		Type:       Mode1,
		SectorSize: SectorSizeCooked,
		Sectors:    imageSize / SectorSizeCooked,
	}
	return l
}

//
type cueTrack struct {
	number     int
	typ        TrackType
	sectorSize int
	index0     int64
	index1     int64
}

/*
	ParseCue parses a cue sheet. Only cue sheets referring to a single image
	file are supported. The start of a track is its INDEX 01, it ends where the
	next track's INDEX 00 (or INDEX 01 if there is no pre-gap) begins. The last
	track extends to the end of the image.
*/
func ParseCue(text string, imageSize int64) (*Layout, error) {

	var tracks []*cueTrack
	var cur *cueTrack
	files := 0

	scanner := bufio.NewScanner(strings.NewReader(text))

	for lineNo := 1; scanner.Scan(); lineNo++ {

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {

		case "FILE":
			if files++; files > 1 {
				return nil, fmt.Errorf(
					"line %d: cue sheets with multiple files are not supported",
					lineNo)
			}

		case "TRACK":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: malformed TRACK", lineNo)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid track number: %v",
					lineNo, err)
			}
			typ, size, err := cueTrackMode(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNo, err)
			}
			cur = &cueTrack{number: n, typ: typ, sectorSize: size,
				index0: -1, index1: -1}
			tracks = append(tracks, cur)

		case "INDEX":
			if cur == nil || len(fields) < 3 {
				return nil, fmt.Errorf("line %d: malformed INDEX", lineNo)
			}
			frame, err := parseMSF(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNo, err)
			}
			switch fields[1] {
			case "00", "0":
				cur.index0 = frame
			case "01", "1":
				cur.index1 = frame
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("no tracks in cue sheet")
	}

	l := newLayout()
	var offset int64

	for ix, t := range tracks {

		if t.index1 < 0 {
			return nil, fmt.Errorf("track %d has no INDEX 01", t.number)
		}

		if ix > 0 {
			prev := tracks[ix-1]
			offset += (t.index1 - prev.index1) * int64(prev.sectorSize)
		} else {
			offset = t.index1 * int64(t.sectorSize)
		}

		track := &Track{
			Number:     t.number,
			Type:       t.typ,
			SectorSize: t.sectorSize,
			Offset:     offset,
		}

		if ix+1 < len(tracks) {
			next := tracks[ix+1]
			end := next.index1
			if next.index0 >= 0 {
				end = next.index0
			}
			track.Sectors = end - t.index1
		} else {
			track.Sectors = (imageSize - offset) / int64(t.sectorSize)
		}

		if err := track.fit(imageSize); err != nil {
			return nil, err
		}

		l.Tracks[t.number] = track
	}

	return l, nil
}

//
func cueTrackMode(mode string) (TrackType, int, error) {

	switch strings.ToUpper(mode) {

	case "AUDIO":
		return Audio, SectorSizeRaw, nil

	case "MODE1/2048":
		return Mode1, SectorSizeCooked, nil

	case "MODE1/2352":
		return Mode1, SectorSizeRaw, nil

	case "MODE2/2352":
		return Mode2, SectorSizeRaw, nil

	default:
		return 0, 0, fmt.Errorf("unsupported track mode: %s", mode)
	}
}

// parseMSF converts a mm:ss:ff time code into a frame (sector) number.
func parseMSF(msf string) (int64, error) {

	parts := strings.Split(msf, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time code: %s", msf)
	}

	var v [3]int64
	for ix, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time code: %s", msf)
		}
		v[ix] = n
	}

	return (v[0]*60+v[1])*framesPerSecond + v[2], nil
}

//
type ccdEntry struct {
	point   int
	control int
	plba    int64
}

/*
	ParseCCD parses a CloneCD control file. Tracks are taken from the TOC
	entries with a point value below 100. CloneCD images always consist of raw
	sectors.
*/
func ParseCCD(text string, imageSize int64) (*Layout, error) {

	var entries []*ccdEntry
	var cur *ccdEntry

	scanner := bufio.NewScanner(strings.NewReader(text))

	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			cur = nil
			if strings.HasPrefix(strings.ToLower(line), "[entry") {
				cur = &ccdEntry{point: -1}
				entries = append(entries, cur)
			}
			continue
		}

		if cur == nil {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		val, err := strconv.ParseInt(strings.TrimSpace(kv[1]), 0, 64)
		if err != nil {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "point":
			cur.point = int(val)
		case "control":
			cur.control = int(val)
		case "plba":
			cur.plba = val
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var tracks []*ccdEntry
	for _, e := range entries {
		if 0 < e.point && e.point < 100 {
			tracks = append(tracks, e)
		}
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("no tracks in control file")
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].plba < tracks[j].plba
	})

	l := newLayout()
	total := imageSize / SectorSizeRaw

	for ix, e := range tracks {

		typ := Audio
		if e.control&0x04 != 0 {
			typ = Mode1
		}

		end := total
		if ix+1 < len(tracks) {
			end = tracks[ix+1].plba
		}

		t := &Track{
			Number:     e.point,
			Type:       typ,
			SectorSize: SectorSizeRaw,
			Offset:     e.plba * SectorSizeRaw,
			Sectors:    end - e.plba,
		}
		if err := t.fit(imageSize); err != nil {
			return nil, err
		}

		l.Tracks[e.point] = t
	}

	return l, nil
}

//
const mdsSignature = "MEDIA DESCRIPTOR"

// MDS track block modes
const (
	mdsModeAudio    = 0xa9
	mdsModeMode1    = 0xaa
	mdsModeMode2    = 0xab
	mdsModeMode2F1  = 0xac
	mdsModeMode2F2  = 0xad
	mdsTrackBlkSize = 0x50
	mdsSessBlkSize  = 0x18
)

/*
	ParseMDS parses an Alcohol 120% descriptor file. The descriptor has a
	header pointing to session blocks, each session block points to its track
	blocks, and each track block points to an extra block holding the track
	length. Offsets beyond 4GB are not supported.
*/
func ParseMDS(data []byte, imageSize int64) (*Layout, error) {

	if len(data) < 0x58 || string(data[:16]) != mdsSignature {
		return nil, fmt.Errorf("not a media descriptor file")
	}

	le := binary.LittleEndian
	sessions := int(le.Uint16(data[0x14:]))
	sessOff := int(le.Uint32(data[0x50:]))

	l := newLayout()

	for s := 0; s < sessions; s++ {

		base := sessOff + s*mdsSessBlkSize
		if base+mdsSessBlkSize > len(data) {
			return nil, fmt.Errorf("truncated session block %d", s)
		}

		blocks := int(data[base+0x0a])
		trackOff := int(le.Uint32(data[base+0x14:]))

		for b := 0; b < blocks; b++ {

			tb := trackOff + b*mdsTrackBlkSize
			if tb+mdsTrackBlkSize > len(data) {
				return nil, fmt.Errorf("truncated track block %d", b)
			}

			point := int(data[tb+0x04])
			if point < 1 || 99 < point {
				continue
			}

			var typ TrackType
			switch data[tb] {
			case mdsModeAudio:
				typ = Audio
			case mdsModeMode1:
				typ = Mode1
			case mdsModeMode2, mdsModeMode2F1, mdsModeMode2F2:
				typ = Mode2
			default:
				return nil, fmt.Errorf(
					"track %d: unsupported mode 0x%02x", point, data[tb])
			}

			t := &Track{
				Number:     point,
				Type:       typ,
				SectorSize: int(le.Uint16(data[tb+0x10:])),
				Offset:     int64(le.Uint32(data[tb+0x28:])),
			}

			if t.SectorSize == 0 {
				return nil, fmt.Errorf("track %d: sector size is zero", point)
			}

			// without an extra block, the track extends to the end of the
			// image, which fit takes care of
			t.Sectors = imageSize
			if extra := int(le.Uint32(data[tb+0x0c:])); extra > 0 &&
				extra+8 <= len(data) {
				t.Sectors = int64(le.Uint32(data[extra+4:]))
			}

			if err := t.fit(imageSize); err != nil {
				return nil, err
			}

			l.Tracks[point] = t
		}
	}

	if len(l.Tracks) == 0 {
		return nil, fmt.Errorf("no tracks in media descriptor")
	}

	return l, nil
}
