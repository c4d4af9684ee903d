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

package control

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/daemon"
	"github.com/xelalexv/xsysloader/pkg/loader"
	"github.com/xelalexv/xsysloader/pkg/repo"
)

/*
	install submits one gesture. Every multipart part with a file name is an
	input file, and is spooled to disk, since sources may need their input
	files for as long as the game is installed. Each ref query parameter adds
	a file from the repository.
*/
func (a *api) install(w http.ResponseWriter, req *http.Request) {

	refs := req.URL.Query()["ref"]
	refFiles, err := repo.ResolveAll(refs, a.repository)
	if handleError(err, http.StatusNotAcceptable, w) {
		return
	}

	files, dir, err := a.spoolUpload(req)
	if err != nil {
		a.done(dir)
		handleError(err, http.StatusBadRequest, w)
		return
	}

	files = append(files, refFiles...)
	out := a.coordinator.Submit(req.Context(), files)
	a.done(dir)

	status := outcomeStatus(out.Result)

	if wantsJSON(req) {
		sendJSONReply(out, status, w)
	} else {
		sendReply([]byte(out.String()), status, w)
	}
}

// reset makes the coordinator forget remembered image and metadata files.
func (a *api) reset(w http.ResponseWriter, req *http.Request) {
	if err := a.coordinator.Reset(); handleError(err, errorStatus(err), w) {
		return
	}
	a.sweep()
	sendReply([]byte("selection reset"), http.StatusOK, w)
}

// done releases upload directory dir, if any. Spooled files the coordinator
// did not take up are removed.
func (a *api) done(dir string) {
	if dir != "" {
		a.uploads.release(dir)
		a.sweep()
	}
}

// sweep removes upload directories no longer in use.
func (a *api) sweep() {
	a.uploads.sweep(a.coordinator.Referenced())
}

//
func outcomeStatus(r daemon.Result) int {
	switch r {
	case daemon.ResultInstalled:
		return http.StatusOK
	case daemon.ResultPending:
		return http.StatusAccepted
	case daemon.ResultIgnored:
		return http.StatusLocked
	default:
		return http.StatusUnprocessableEntity
	}
}

// spoolUpload writes the files of a multipart upload into a new directory
// below the spool directory. Requests that are not multipart carry no files.
func (a *api) spoolUpload(req *http.Request) ([]loader.InputFile, string, error) {

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, "", nil
	}

	mr, err := req.MultipartReader()
	if err != nil {
		return nil, "", err
	}

	dir, err := a.uploads.create()
	if err != nil {
		return nil, "", err
	}

	var files []loader.InputFile

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, dir, err
		}

		name := filepath.Base(part.FileName())
		if part.FileName() == "" || !filepath.IsLocal(name) {
			part.Close()
			continue
		}

		f, err := spoolPart(dir, name, part)
		part.Close()
		if err != nil {
			return nil, dir, err
		}
		files = append(files, f)
	}

	return files, dir, nil
}

//
func spoolPart(dir, name string, r io.Reader) (loader.InputFile, error) {

	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	n, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("cannot spool %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"file": name,
		"size": humanize.Bytes(uint64(n)),
	}).Debug("spooled upload")

	return loader.NewDiskFile(path)
}
