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
	"net/http"

	"github.com/xelalexv/xsysloader/pkg/daemon"
)

var errInvalidLimit = errors.New("limit must be positive")

//
func (a *api) manifest(w http.ResponseWriter, req *http.Request) {

	m, err := a.coordinator.Manifest()
	if err != nil {
		handleError(err, errorStatus(err), w)
		return
	}

	setHeaders(w.Header(), false)
	w.WriteHeader(http.StatusOK)
	w.Write(m)
}

//
func (a *api) history(w http.ResponseWriter, req *http.Request) {

	limit, err := getIntArg(req, "limit", 20)
	if err == nil && limit < 1 {
		err = errInvalidLimit
	}
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	list, err := a.coordinator.History(req.Context(), limit)
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}

	if list == nil {
		list = []*daemon.Attempt{}
	}
	sendJSONReply(list, http.StatusOK, w)
}
