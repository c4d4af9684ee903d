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
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/loader/cdimage"
)

// names of the readiness indicators
const (
	IndicatorImage    = "imgReady"
	IndicatorMetadata = "cueReady"
)

// user notices
const (
	NoticeRAR          = "rar archives cannot be loaded before extracting them"
	noticeUnrecognized = "%s is in an unrecognized format"
)

// Indicators receives updates on which parts of a disc image distribution
// have been supplied so far.
type Indicators interface {
	SetReady(indicator, name string)
}

// Selection is the result of classifying a set of input files.
type Selection struct {
	Kind Kind
	// set for KindCDImage, Metadata may be nil for ISO images
	Image    InputFile
	Metadata InputFile
	// set for KindZip (exactly one file) and KindFile
	Files []InputFile
	// Recognized is set when some file was recognized, even if that did not
	// lead to a source yet, e.g. an image without its metadata file
	Recognized bool
	// Notices for the user, collected during classification
	Notices []string
}

// Unrecognized returns the notice for input that was not recognized at all,
// or an empty string.
func (s *Selection) Unrecognized(files []InputFile) string {
	if s.Kind != KindNone || s.Recognized || len(files) == 0 {
		return ""
	}
	return fmt.Sprintf(noticeUnrecognized, files[0].Name())
}

// Inputs returns all files the selected source reads from.
func (s *Selection) Inputs() []InputFile {
	ret := append([]InputFile{}, s.Files...)
	for _, f := range []InputFile{s.Image, s.Metadata} {
		if f != nil {
			ret = append(ret, f)
		}
	}
	return ret
}

// NewClassifier returns a classifier reporting readiness to ind, which may be
// nil.
func NewClassifier(ind Indicators) *Classifier {
	return &Classifier{indicators: ind}
}

/*
	Classifier decides which kind of source applies to the files of a user
	gesture. It remembers image and metadata files across gestures, so that a
	user can supply the image first and its metadata file with a later gesture.
	A Classifier is not safe for concurrent use, its owner serializes calls.
*/
type Classifier struct {
	image      InputFile
	metadata   InputFile
	indicators Indicators
}

// Classify classifies files. Disc images take precedence over all other
// kinds, since they are the most unambiguous signal.
func (c *Classifier) Classify(files []InputFile) *Selection {

	sel := &Selection{Kind: KindNone}
	hasALD := false

	for _, f := range files {

		name := f.Name()

		switch {

		case cdimage.IsImageFile(name):
			c.image = f
			c.setReady(IndicatorImage, name)
			sel.Recognized = true

		case cdimage.IsMetadataFile(name):
			c.metadata = f
			c.setReady(IndicatorMetadata, name)
			sel.Recognized = true

		case IsALD(name):
			hasALD = true

		case strings.HasSuffix(strings.ToLower(name), ".rar"):
			sel.Notices = append(sel.Notices, NoticeRAR)
			sel.Recognized = true
		}
	}

	if c.image != nil && (c.metadata != nil || cdimage.IsISO(c.image.Name())) {
		sel.Kind = KindCDImage
		sel.Image = c.image
		sel.Metadata = c.metadata

	} else if c.image == nil && c.metadata == nil {
		if len(files) == 1 &&
			strings.HasSuffix(strings.ToLower(files[0].Name()), ".zip") {
			sel.Kind = KindZip
			sel.Files = files
		} else if hasALD {
			sel.Kind = KindFile
			sel.Files = files
		}
	}

	log.WithFields(log.Fields{
		"files":      len(files),
		"kind":       sel.Kind,
		"recognized": sel.Recognized,
	}).Debug("classified input")

	return sel
}

// Forget drops remembered image and metadata files, and clears their
// readiness indicators.
func (c *Classifier) Forget() {
	if c.image != nil {
		c.setReady(IndicatorImage, "")
	}
	if c.metadata != nil {
		c.setReady(IndicatorMetadata, "")
	}
	c.image = nil
	c.metadata = nil
}

// Remembered returns the image and metadata files kept from earlier gestures.
func (c *Classifier) Remembered() []InputFile {
	var ret []InputFile
	for _, f := range []InputFile{c.image, c.metadata} {
		if f != nil {
			ret = append(ret, f)
		}
	}
	return ret
}

//
func (c *Classifier) setReady(indicator, name string) {
	if c.indicators != nil {
		c.indicators.SetReady(indicator, name)
	}
}
