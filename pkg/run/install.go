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

package run

import (
	"bufio"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
)

//
func NewInstall() *Install {

	i := &Install{}
	i.Runner = *NewRunner(
		`install -i|--input {file} [-i|--input {file} ...] [--ref {repo://...} ...]
      [-a|--address {address}] [-p|--port {port}]`,
		"install game files",
		`
Use the install command to hand a set of files to the daemon for installing. This can
be a set of ALD archives along with CD audio track files, a zip archive, or a disc
image with its cue, ccd, or mds file. The image and its metadata file may also be
given with separate install commands.`,
		"", `- Files given with --input are uploaded to the daemon. Files given with --ref
  are taken from the daemon's game repo, e.g. --ref repo://rance/rance.zip

`+runnerHelpEpilogue, i.Run)

	i.AddBaseSettings()
	i.AddSetting(&i.Files, "input", "i", "", nil, "file to upload", false)
	i.AddSetting(&i.Refs, "ref", "", "", nil, "file reference in game repo", false)

	return i
}

//
type Install struct {
	//
	Runner
	//
	Files []string
	Refs  []string
}

//
func (i *Install) Run() error {

	i.ParseSettings()

	if len(i.Files) == 0 && len(i.Refs) == 0 {
		return fmt.Errorf("you need to specify input files or references")
	}

	for _, f := range i.Files {
		if info, err := os.Stat(f); err != nil {
			return err
		} else if info.IsDir() {
			return fmt.Errorf("'%s' is a directory", f)
		}
	}

	path := "/install"
	if len(i.Refs) > 0 {
		path += "?" + url.Values{"ref": i.Refs}.Encode()
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeParts(mw, i.Files))
	}()

	resp, err := i.apiRequest("POST", path, mw.FormDataContentType(), false, pr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	msg, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	fmt.Printf("%s", msg)
	return nil
}

//
func writeParts(mw *multipart.Writer, files []string) error {

	for _, file := range files {
		if err := writePart(mw, file); err != nil {
			return err
		}
	}

	return mw.Close()
}

//
func writePart(mw *multipart.Writer, file string) error {

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := mw.CreateFormFile("file", filepath.Base(file))
	if err != nil {
		return err
	}

	_, err = io.Copy(part, bufio.NewReader(f))
	return err
}
