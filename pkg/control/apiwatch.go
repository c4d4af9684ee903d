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
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/daemon"
)

//
func (a *api) watch(w http.ResponseWriter, req *http.Request) {

	timeout, err := strconv.Atoi(req.URL.Query().Get("timeout"))
	if err != nil || timeout < 0 || 1800 < timeout {
		timeout = 600
	}

	log.Infof("starting watch for %s, timeout %d", req.RemoteAddr, timeout)
	update := make(chan *daemon.Status, 1)

	select {
	case a.longPollQueue <- update:
	case <-req.Context().Done():
		return
	case <-time.After(time.Duration(timeout) * time.Second):
		log.Infof("closing watch for %s after timeout", req.RemoteAddr)
		sendReply([]byte{}, http.StatusRequestTimeout, w)
		return
	}

	var stat *daemon.Status
	select {
	case stat = <-update:
	case <-req.Context().Done():
		return
	}

	log.Infof("sending status change to %s", req.RemoteAddr)

	if wantsJSON(req) {
		sendJSONReply(stat, http.StatusOK, w)
	} else {
		sendReply([]byte((&Status{stat}).String()), http.StatusOK, w)
	}
}

/*
	watchCoordinator polls the coordinator status, and hands each change to
	all long poll clients waiting at that time. Clients are queued by their
	watch requests, so a change is only delivered to clients that were
	already waiting.
*/
func (a *api) watchCoordinator() {

	log.Info("start watching for coordinator changes")

	last := a.coordinator.Status()
	var waiting []chan *daemon.Status

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {

		case <-a.stop:
			log.Info("stopped watching for coordinator changes")
			return

		case cl := <-a.longPollQueue:
			waiting = append(waiting, cl)

		case <-ticker.C:
			stat := a.coordinator.Status()
			if stat.Equal(last) {
				continue
			}
			last = stat

			log.WithField("clients", len(waiting)).Info("coordinator changes")
			for _, cl := range waiting {
				cl <- stat
			}
			waiting = nil
		}
	}
}
