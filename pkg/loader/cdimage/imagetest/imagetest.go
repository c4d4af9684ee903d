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

// Package imagetest builds small disc images for tests.
package imagetest

import (
	"encoding/binary"
	"fmt"
)

const blockSize = 2048

// File is a file to place into a test image.
type File struct {
	Name string
	Data []byte
}

// Dir is a directory to place into a test image. The listing of a directory
// has to fit into a single block.
type Dir struct {
	Name  string
	Files []File
	Dirs  []Dir
}

//
type node struct {
	dir    *Dir
	file   *File
	extent uint32
	size   uint32
	kids   []*node
}

// ISO builds an ISO9660 image with cooked 2048 byte sectors, with root as its
// root directory.
func ISO(root Dir) []byte {

	next := uint32(18)
	tree := assign(&root, &next)

	img := make([]byte, int(next)*blockSize)

	pvd := img[16*blockSize:]
	pvd[0] = 1
	copy(pvd[1:], "CD001")
	pvd[6] = 1
	copy(pvd[8:40], fmt.Sprintf("%-32s", ""))
	copy(pvd[40:72], fmt.Sprintf("%-32s", "TESTDISC"))
	bothEndian32(pvd[80:], next)
	bothEndian16(pvd[120:], 1)
	bothEndian16(pvd[124:], 1)
	bothEndian16(pvd[128:], blockSize)
	copy(pvd[156:], record([]byte{0}, tree.extent, tree.size, true))
	copy(pvd[190:813], fmt.Sprintf("%-623s", ""))
	// creation, modification, expiration & effective dates, all unset
	for _, off := range []int{813, 830, 847, 864} {
		copy(pvd[off:], "0000000000000000")
		pvd[off+16] = 0
	}
	pvd[881] = 1

	term := img[17*blockSize:]
	term[0] = 255
	copy(term[1:], "CD001")
	term[6] = 1

	write(img, tree)
	return img
}

//
func assign(d *Dir, next *uint32) *node {

	n := &node{dir: d, extent: *next, size: blockSize}
	*next++

	for ix := range d.Dirs {
		n.kids = append(n.kids, assign(&d.Dirs[ix], next))
	}

	for ix := range d.Files {
		f := &d.Files[ix]
		k := &node{file: f, extent: *next, size: uint32(len(f.Data))}
		blocks := (len(f.Data) + blockSize - 1) / blockSize
		if blocks == 0 {
			blocks = 1
		}
		*next += uint32(blocks)
		n.kids = append(n.kids, k)
	}

	return n
}

//
func write(img []byte, n *node) {

	if n.file != nil {
		copy(img[int(n.extent)*blockSize:], n.file.Data)
		return
	}

	var listing []byte
	listing = append(listing, record([]byte{0}, n.extent, n.size, true)...)
	listing = append(listing, record([]byte{1}, n.extent, n.size, true)...)

	for _, k := range n.kids {
		if k.dir != nil {
			listing = append(listing,
				record([]byte(k.dir.Name), k.extent, k.size, true)...)
			write(img, k)
		} else {
			listing = append(listing,
				record([]byte(k.file.Name+";1"), k.extent, k.size, false)...)
			write(img, k)
		}
	}

	if len(listing) > blockSize {
		panic("directory listing does not fit into one block")
	}

	copy(img[int(n.extent)*blockSize:], listing)
}

//
func record(name []byte, extent, size uint32, dir bool) []byte {

	length := 33 + len(name)
	if length%2 != 0 {
		length++
	}

	rec := make([]byte, length)
	rec[0] = byte(length)
	bothEndian32(rec[2:], extent)
	bothEndian32(rec[10:], size)
	if dir {
		rec[25] = 0x02
	}
	bothEndian16(rec[28:], 1)
	rec[32] = byte(len(name))
	copy(rec[33:], name)

	return rec
}

// bothEndian32 writes v little endian followed by big endian, as ISO9660
// stores most numbers.
func bothEndian32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
	binary.BigEndian.PutUint32(b[4:], v)
}

//
func bothEndian16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
	binary.BigEndian.PutUint16(b[2:], v)
}

// Raw converts a cooked image into raw 2352 byte mode 1 sectors.
func Raw(cooked []byte) []byte {

	blocks := len(cooked) / blockSize
	raw := make([]byte, 0, blocks*2352)

	for b := 0; b < blocks; b++ {
		sec := make([]byte, 2352)
		for ix := 1; ix <= 10; ix++ {
			sec[ix] = 0xff
		}
		lba := b + 150
		sec[12] = bcd(lba / 75 / 60)
		sec[13] = bcd(lba / 75 % 60)
		sec[14] = bcd(lba % 75)
		sec[15] = 1
		copy(sec[16:], cooked[b*blockSize:(b+1)*blockSize])
		raw = append(raw, sec...)
	}

	return raw
}

// Audio returns sectors worth of recognizable PCM data.
func Audio(sectors int, fill byte) []byte {
	pcm := make([]byte, sectors*2352)
	for ix := range pcm {
		pcm[ix] = fill
	}
	return pcm
}

//
func bcd(v int) byte {
	return byte(v/10<<4 | v%10)
}
