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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/daemon"
	"github.com/xelalexv/xsysloader/pkg/loader"
)

//
type APIServer interface {
	Serve() error
	Stop() error
}

// NewAPIServer creates the control API for coordinator c. Uploaded files are
// spooled to directory spool, references are resolved in directory
// repository, which may be empty.
func NewAPIServer(addr, repository, spool string, c *daemon.Coordinator) APIServer {
	return newAPI(addr, repository, spool, c)
}

//
func newAPI(addr, repository, spool string, c *daemon.Coordinator) *api {
	return &api{
		address:       addr,
		repository:    repository,
		uploads:       newUploads(spool),
		coordinator:   c,
		pollInterval:  time.Second,
		longPollQueue: make(chan chan *daemon.Status),
		stop:          make(chan struct{}),
	}
}

//
type api struct {
	address     string
	repository  string
	uploads     *uploads
	coordinator *daemon.Coordinator
	server      *http.Server
	//
	pollInterval  time.Duration
	longPollQueue chan chan *daemon.Status
	stop          chan struct{}
}

//
func (a *api) Serve() error {

	addr := a.address
	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:8888", a.address)
	}

	log.Infof("XSysLoader API starts listening on %s", addr)
	a.server = &http.Server{Addr: addr, Handler: a.router()}

	// uploads left over from earlier runs
	a.sweep()

	go a.watchCoordinator()

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) router() http.Handler {

	router := mux.NewRouter().StrictSlash(true)

	addRoute(router, "install", "POST", "/install", a.install)
	addRoute(router, "reset", "DELETE", "/selection", a.reset)
	addRoute(router, "status", "GET", "/status", a.status)
	addRoute(router, "watch", "GET", "/watch", a.watch)
	addRoute(router, "cdda", "GET", "/cdda/{track:[0-9]+}", a.cdda)
	addRoute(router, "reload", "PUT", "/reload", a.reload)
	addRoute(router, "manifest", "GET", "/manifest", a.manifest)
	addRoute(router, "history", "GET", "/history", a.history)

	return router
}

//
func (a *api) Stop() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	if a.server != nil {
		log.Info("API server stopping...")
		err := a.server.Shutdown(context.Background())
		a.server = nil
		return err
	}
	return nil
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}

// errorStatus maps errors of the coordinator and sources to status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, daemon.ErrNotInstalled):
		return http.StatusConflict
	case errors.Is(err, daemon.ErrInstalling):
		return http.StatusLocked
	case errors.Is(err, loader.ErrNoTrack):
		return http.StatusNotFound
	case errors.Is(err, loader.ErrUnrecognizedFormat), loader.IsNoGamedata(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

//
func getArg(req *http.Request, arg string) (string, error) {
	ret := req.URL.Query().Get(arg)
	if ret != "" {
		return url.QueryUnescape(ret)
	}
	return ret, nil
}

//
func getIntArg(req *http.Request, arg string, def int) (int, error) {
	val, err := getArg(req, arg)
	if err != nil {
		return -1, err
	}
	if val == "" {
		return def, nil
	}
	return strconv.Atoi(val)
}

//
func setHeaders(h http.Header, json bool) {
	if json {
		h.Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		h.Set("Content-Type", "text/plain; charset=UTF-8")
	}
}

//
func handleError(e error, statusCode int, w http.ResponseWriter) bool {

	if e == nil {
		return false
	}

	log.Errorf("%v", e)

	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(fmt.Sprintf("%v\n", e))); err != nil {
		log.Errorf("problem writing error: %v", err)
	}

	return true
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendStreamReply(r io.Reader, size int64, contentType string,
	statusCode int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentType)
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(statusCode)
	if _, err := io.Copy(w, r); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), true)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem writing reply: %v", err)
	}
}

//
func wantsJSON(req *http.Request) bool {
	for _, h := range []string{"Accept", "Content-Type"} {
		if strings.HasPrefix(req.Header.Get(h), "application/json") {
			return true
		}
	}
	return false
}
