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
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/xsysloader/pkg/loader/cdimage/imagetest"
)

const cueSheet = `FILE "GAME.IMG" BINARY
  TRACK 01 MODE1/2352
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 00 00:01:00
    INDEX 01 00:01:10
  TRACK 03 AUDIO
    INDEX 01 00:02:00
`

func TestParseCue(t *testing.T) {
	size := int64(200 * SectorSizeRaw)
	l, err := ParseCue(cueSheet, size)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, l.Numbers())

	t1 := l.Track(1)
	assert.Equal(t, Mode1, t1.Type)
	assert.Equal(t, int64(0), t1.Offset)
	assert.Equal(t, int64(75), t1.Sectors, "data track ends at INDEX 00 of track 2")

	t2 := l.Track(2)
	assert.True(t, t2.IsAudio())
	assert.Equal(t, int64(85*SectorSizeRaw), t2.Offset)
	assert.Equal(t, int64(150-85), t2.Sectors)

	t3 := l.Track(3)
	assert.Equal(t, int64(150*SectorSizeRaw), t3.Offset)
	assert.Equal(t, int64(50), t3.Sectors)
}

func TestParseCueErrors(t *testing.T) {
	tests := []struct {
		name string
		cue  string
	}{
		{"empty", ""},
		{"multiple files", "FILE a.img BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:00:00\nFILE b.img BINARY\n"},
		{"bad mode", "FILE a.img BINARY\nTRACK 01 CDG\nINDEX 01 00:00:00\n"},
		{"missing index", "FILE a.img BINARY\nTRACK 01 MODE1/2352\n"},
		{"bad time code", "FILE a.img BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:xx:00\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCue(tt.cue, 1000*SectorSizeRaw)
			assert.Error(t, err)
		})
	}
}

func TestParseCCD(t *testing.T) {
	ccd := `[CloneCD]
Version=3
[Entry 0]
Point=0xa0
Control=0x04
PLBA=-1
[Entry 1]
Point=0x01
Control=0x04
PLBA=0
[Entry 2]
Point=0x02
Control=0x00
PLBA=300
[TRACK 1]
MODE=1
`
	l, err := ParseCCD(ccd, 1000*SectorSizeRaw)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, l.Numbers())
	assert.Equal(t, Mode1, l.Track(1).Type)
	assert.Equal(t, int64(300), l.Track(1).Sectors)
	assert.True(t, l.Track(2).IsAudio())
	assert.Equal(t, int64(300*SectorSizeRaw), l.Track(2).Offset)
	assert.Equal(t, int64(700), l.Track(2).Sectors)
}

func buildMDS(tracks []mdsTestTrack) []byte {

	le := binary.LittleEndian
	const sessOff = 0x58
	const trackOff = sessOff + mdsSessBlkSize
	extraOff := trackOff + len(tracks)*mdsTrackBlkSize

	data := make([]byte, extraOff+8*len(tracks))
	copy(data, mdsSignature)
	le.PutUint16(data[0x14:], 1)
	le.PutUint32(data[0x50:], sessOff)
	data[sessOff+0x0a] = byte(len(tracks))
	le.PutUint32(data[sessOff+0x14:], trackOff)

	for ix, tr := range tracks {
		tb := data[trackOff+ix*mdsTrackBlkSize:]
		tb[0] = tr.mode
		tb[4] = tr.point
		le.PutUint32(tb[0x0c:], uint32(extraOff+8*ix))
		le.PutUint16(tb[0x10:], tr.sectorSize)
		le.PutUint32(tb[0x28:], tr.offset)
		le.PutUint32(data[extraOff+8*ix+4:], tr.sectors)
	}

	return data
}

type mdsTestTrack struct {
	mode       byte
	point      byte
	sectorSize uint16
	offset     uint32
	sectors    uint32
}

func TestParseMDS(t *testing.T) {
	data := buildMDS([]mdsTestTrack{
		{mode: mdsModeMode1, point: 1, sectorSize: 2352, offset: 0, sectors: 100},
		{mode: mdsModeAudio, point: 2, sectorSize: 2448, offset: 100 * 2352, sectors: 20},
		{mode: mdsModeMode1, point: 0xa0},
	})

	l, err := ParseMDS(data, 100*2352+20*2448)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, l.Numbers())
	assert.Equal(t, int64(100), l.Track(1).Sectors)
	assert.Equal(t, 2448, l.Track(2).SectorSize)
	assert.Equal(t, int64(100*2352), l.Track(2).Offset)

	_, err = ParseMDS([]byte("not a descriptor at all, really not"), 0)
	assert.Error(t, err)
}

func TestLayoutOutsideOfImage(t *testing.T) {

	const size = 10 * SectorSizeRaw

	ccd := func(plba2 int) string {
		return fmt.Sprintf("[Entry 1]\nPoint=0x01\nControl=0x04\nPLBA=0\n"+
			"[Entry 2]\nPoint=0x02\nControl=0x00\nPLBA=%d\n", plba2)
	}

	tests := []struct {
		name  string
		parse func() (*Layout, error)
	}{
		{"ccd track beyond end", func() (*Layout, error) {
			return ParseCCD(ccd(20), size)
		}},
		{"ccd negative lba", func() (*Layout, error) {
			return ParseCCD("[Entry 1]\nPoint=1\nControl=4\nPLBA=-5\n", size)
		}},
		{"mds offset beyond end", func() (*Layout, error) {
			return ParseMDS(buildMDS([]mdsTestTrack{
				{mode: mdsModeAudio, point: 1, sectorSize: 2352,
					offset: 20 * 2352, sectors: 1},
			}), size)
		}},
		{"cue track beyond end", func() (*Layout, error) {
			return ParseCue("FILE a.img BINARY\nTRACK 01 AUDIO\n"+
				"INDEX 01 00:01:00\n", size)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parse()
			assert.Error(t, err)
		})
	}
}

func TestLayoutCappedToImage(t *testing.T) {

	const size = 10 * SectorSizeRaw

	l, err := ParseMDS(buildMDS([]mdsTestTrack{
		{mode: mdsModeAudio, point: 1, sectorSize: 2352, sectors: 0xffffffff},
	}), size)
	require.NoError(t, err)
	assert.Equal(t, int64(10), l.Track(1).Sectors)

	l, err = ParseCCD("[Entry 1]\nPoint=1\nControl=0\nPLBA=4\n", size)
	require.NoError(t, err)
	assert.Equal(t, int64(6), l.Track(1).Sectors)

	img := NewImage(bytes.NewReader(imagetest.Audio(10, 0x33)), l)
	pcm, err := img.ReadAudio(img.Track(1))
	require.NoError(t, err)
	assert.Equal(t, imagetest.Audio(6, 0x33), pcm)

	_, err = NewImage(bytes.NewReader(nil), newLayout()).ReadAudio(
		&Track{Number: 1, Type: Audio, SectorSize: SectorSizeRaw, Sectors: -10})
	assert.Error(t, err)
}

func TestCodecLayout(t *testing.T) {
	c := NewCodec()

	l, err := c.Layout("", nil, 10*SectorSizeCooked)
	require.NoError(t, err)
	assert.Equal(t, int64(10), l.Track(1).Sectors)
	assert.Equal(t, SectorSizeCooked, l.Track(1).SectorSize)

	l, err = c.Layout("GAME.CUE", []byte(cueSheet), 200*SectorSizeRaw)
	require.NoError(t, err)
	assert.Len(t, l.Tracks, 3)

	_, err = c.Layout("GAME.TOC", nil, 0)
	assert.Error(t, err)
}

func TestFileNameConventions(t *testing.T) {
	assert.True(t, IsImageFile("game.IMG"))
	assert.True(t, IsImageFile("game.mdf"))
	assert.True(t, IsImageFile("game.iso"))
	assert.False(t, IsImageFile("game.bin"))
	assert.True(t, IsMetadataFile("GAME.CUE"))
	assert.True(t, IsMetadataFile("game.ccd"))
	assert.True(t, IsMetadataFile("game.mds"))
	assert.False(t, IsMetadataFile("game.toc"))
	assert.True(t, IsISO("a.ISO"))
}

var testTree = imagetest.Dir{
	Files: []imagetest.File{{Name: "README.TXT", Data: []byte("hello")}},
	Dirs: []imagetest.Dir{{
		Name: "GAMEDATA",
		Files: []imagetest.File{
			{Name: "GAME00S0.ALD", Data: bytes.Repeat([]byte{0x53}, 3000)},
			{Name: "GAME00G0.ALD", Data: []byte("graphics")},
		},
	}},
}

func checkTree(t *testing.T, fs *FS) {

	root, err := fs.ReadDir(fs.Root())
	require.NoError(t, err)
	require.Len(t, root, 2)

	names := map[string]*Entry{}
	for _, e := range root {
		names[e.Name] = e
	}
	require.Contains(t, names, "GAMEDATA")
	require.Contains(t, names, "README.TXT")
	assert.True(t, names["GAMEDATA"].Dir)

	readme, err := fs.ReadFile(names["README.TXT"])
	require.NoError(t, err)
	assert.Equal(t, "hello", string(readme))

	game, err := fs.ReadDir(names["GAMEDATA"])
	require.NoError(t, err)
	require.Len(t, game, 2)

	for _, e := range game {
		data, err := fs.ReadFile(e)
		require.NoError(t, err)
		switch e.Name {
		case "GAME00S0.ALD":
			assert.Equal(t, bytes.Repeat([]byte{0x53}, 3000), data)
		case "GAME00G0.ALD":
			assert.Equal(t, "graphics", string(data))
		default:
			t.Errorf("unexpected entry %s", e.Name)
		}
	}
}

func TestISO9660Cooked(t *testing.T) {
	iso := imagetest.ISO(testTree)
	img := NewImage(bytes.NewReader(iso), ISOLayout(int64(len(iso))))

	fs, err := OpenISO9660(img.DataReader(img.Track(1)))
	require.NoError(t, err)
	checkTree(t, fs)
}

func TestISO9660Raw(t *testing.T) {
	raw := imagetest.Raw(imagetest.ISO(testTree))
	l, err := ParseCue("FILE x.img BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:00:00\n",
		int64(len(raw)))
	require.NoError(t, err)

	img := NewImage(bytes.NewReader(raw), l)
	fs, err := OpenISO9660(img.DataReader(img.Track(1)))
	require.NoError(t, err)
	checkTree(t, fs)
}

func TestOpenISO9660Garbage(t *testing.T) {
	_, err := OpenISO9660(bytes.NewReader(make([]byte, 20*2048)))
	assert.Error(t, err)
}

func TestReadAudio(t *testing.T) {
	data := imagetest.Raw(imagetest.ISO(testTree))
	dataSectors := len(data) / SectorSizeRaw
	data = append(data, imagetest.Audio(10, 0x11)...)

	img := NewImage(bytes.NewReader(data), &Layout{Tracks: map[int]*Track{
		1: {Number: 1, Type: Mode1, SectorSize: SectorSizeRaw, Sectors: int64(dataSectors)},
		2: {Number: 2, Type: Audio, SectorSize: SectorSizeRaw,
			Offset: int64(len(data) - 10*SectorSizeRaw), Sectors: 10},
	}})

	pcm, err := img.ReadAudio(img.Track(2))
	require.NoError(t, err)
	assert.Equal(t, imagetest.Audio(10, 0x11), pcm)

	_, err = img.ReadAudio(img.Track(1))
	assert.Error(t, err)
	_, err = img.ReadSector(img.Track(2), 0)
	assert.Error(t, err)
}

func TestReadAudioWithSubchannel(t *testing.T) {
	var data []byte
	for s := 0; s < 3; s++ {
		data = append(data, imagetest.Audio(1, 0x22)...)
		data = append(data, bytes.Repeat([]byte{0xee}, 96)...)
	}

	img := NewImage(bytes.NewReader(data), &Layout{Tracks: map[int]*Track{
		2: {Number: 2, Type: Audio, SectorSize: SectorSizeRawSub, Sectors: 3},
	}})

	pcm, err := img.ReadAudio(img.Track(2))
	require.NoError(t, err)
	assert.Equal(t, imagetest.Audio(3, 0x22), pcm)
}

func TestWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	wav := WAV(pcm)
	require.Len(t, wav, 48)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(wav[4:]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[22:]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(wav[24:]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(wav[40:]))
	assert.Equal(t, pcm, wav[44:])
}
