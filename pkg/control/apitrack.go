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
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// content types of CD audio track files
var trackContentTypes = map[string]string{
	".wav": "audio/wav",
	".ogg": "audio/ogg",
	".mp3": "audio/mpeg",
}

//
func (a *api) cdda(w http.ResponseWriter, req *http.Request) {

	track, err := strconv.Atoi(mux.Vars(req)["track"])
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	f, err := a.coordinator.CDDA(req.Context(), track)
	if err != nil {
		handleError(err, errorStatus(err), w)
		return
	}

	in, err := f.Open()
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}
	defer in.Close()

	contentType, ok := trackContentTypes[strings.ToLower(filepath.Ext(f.Name()))]
	if !ok {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", f.Name()))
	sendStreamReply(in, f.Size(), contentType, http.StatusOK, w)
}

//
func (a *api) reload(w http.ResponseWriter, req *http.Request) {
	if err := a.coordinator.ReloadImage(req.Context()); err != nil {
		handleError(err, errorStatus(err), w)
		return
	}
	sendReply([]byte("image reloaded"), http.StatusOK, w)
}
