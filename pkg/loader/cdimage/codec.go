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
	"path/filepath"
	"strings"
)

//
type parseFunc func(meta []byte, imageSize int64) (*Layout, error)

// NewCodec returns a codec knowing all supported metadata formats.
func NewCodec() *Codec {
	return &Codec{
		parsers: map[string]parseFunc{
			"cue": func(meta []byte, size int64) (*Layout, error) {
				return ParseCue(string(meta), size)
			},
			"ccd": func(meta []byte, size int64) (*Layout, error) {
				return ParseCCD(string(meta), size)
			},
			"mds": ParseMDS,
		},
	}
}

// Codec determines the track layout of disc images from their metadata file.
type Codec struct {
	parsers map[string]parseFunc
}

//
func (c *Codec) Name() string {
	return "cdimage"
}

/*
	Layout determines the layout of an image of imageSize bytes, from metadata
	file metaName with content meta. The format of the metadata is determined
	by the extension of metaName. If metaName is empty, the image is taken to
	be a plain ISO image.
*/
func (c *Codec) Layout(metaName string, meta []byte, imageSize int64) (*Layout, error) {

	if metaName == "" {
		return ISOLayout(imageSize), nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(metaName), "."))
	parse, ok := c.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported metadata format: %s", ext)
	}

	l, err := parse(meta, imageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", metaName, err)
	}
	return l, nil
}

//
func IsImageFile(name string) bool {
	switch ext(name) {
	case "img", "mdf", "iso":
		return true
	}
	return false
}

//
func IsMetadataFile(name string) bool {
	switch ext(name) {
	case "cue", "ccd", "mds":
		return true
	}
	return false
}

//
func IsISO(name string) bool {
	return ext(name) == "iso"
}

//
func ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
