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
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/xsysloader/pkg/daemon"
)

func testRunner(t *testing.T, srv *httptest.Server) *Runner {
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return &Runner{Address: u.Hostname(), Port: port}
}

func TestAPIRequestErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			switch req.URL.Path {
			case "/failed":
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte("failed: no ALD files found in game.zip\n"))
			case "/silent":
				w.WriteHeader(http.StatusConflict)
			case "/watch":
				w.WriteHeader(http.StatusRequestTimeout)
			default:
				w.Write([]byte("ok"))
			}
		}))
	defer srv.Close()

	r := testRunner(t, srv)

	_, err := r.apiCall("GET", "/failed", false, nil)
	require.Error(t, err)
	assert.Equal(t, "failed: no ALD files found in game.zip", err.Error())

	_, err = r.apiCall("GET", "/silent", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")

	body, err := r.apiCall("GET", "/watch", false, nil)
	require.NoError(t, err)
	body.Close()

	body, err = r.apiCall("GET", "/", false, nil)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestResetSelectionRequest(t *testing.T) {
	busy := true
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			if req.Method != "DELETE" || req.URL.Path != "/selection" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if busy {
				w.WriteHeader(http.StatusLocked)
				w.Write([]byte("install in progress\n"))
				return
			}
			w.Write([]byte("selection reset"))
		}))
	defer srv.Close()

	r := testRunner(t, srv)

	_, err := r.apiCall("DELETE", "/selection", false, nil)
	require.Error(t, err)
	assert.Equal(t, "install in progress", err.Error())

	busy = false
	body, err := r.apiCall("DELETE", "/selection", false, nil)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "selection reset", string(data))
}

func TestWriteParts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "GAME00S0.ALD")
	b := filepath.Join(dir, "02.ogg")
	require.NoError(t, os.WriteFile(a, []byte("scenario"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("ogg"), 0644))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, writeParts(mw, []string{a, b}))

	mr := multipart.NewReader(&buf, mw.Boundary())
	got := map[string]string{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		got[part.FileName()] = string(data)
	}

	assert.Equal(t, map[string]string{
		"GAME00S0.ALD": "scenario",
		"02.ogg":       "ogg",
	}, got)

	assert.Error(t, writeParts(multipart.NewWriter(io.Discard),
		[]string{filepath.Join(dir, "missing")}))
}

func TestParseManifest(t *testing.T) {
	rows, err := parseManifest(strings.NewReader(
		"Scenario0 GAME00S0.ALD\nSaveA save/GAME00sa.asd\n\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Scenario0", "GAME00S0.ALD"},
		{"SaveA", "save/GAME00sa.asd"},
	}, rows)

	_, err = parseManifest(strings.NewReader("garbage\n"))
	assert.Error(t, err)
}

func TestWriteTablePlain(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"ENTRY", "FILE"}, [][]string{
		{"Scenario0", "GAME00S0.ALD"},
		{"Graphics0", "GAME00G0.ALD"},
	})
	assert.Equal(t,
		"Scenario0\tGAME00S0.ALD\nGraphics0\tGAME00G0.ALD\n", buf.String())
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ENTRY", "FILE"},
		[][]string{{"Scenario0", "GAME00S0.ALD"}, {"Midi0"}})
	assert.Contains(t, out, "ENTRY")
	assert.Contains(t, out, "GAME00S0.ALD")
	assert.Contains(t, out, "Midi0")
	assert.Empty(t, renderTable(nil, nil))
}

func TestHistoryRows(t *testing.T) {
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	data := `[{"id":"a","started":"2021-03-01T11:00:00Z","kind":"zip",
		"files":["game.zip"],"result":"installed","entries":12}]`

	attempts, err := decodeHistory(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, attempts, 1)

	rows := historyRows(attempts, false, now)
	assert.Equal(t, [][]string{{
		"2021-03-01T11:00:00Z", "zip", "installed", "12", "game.zip", "",
	}}, rows)

	rows = historyRows(attempts, true, now)
	assert.Equal(t, "1 hour ago", rows[0][0])

	_, err = decodeHistory(strings.NewReader("{"))
	assert.Error(t, err)

	none, err := decodeHistory(strings.NewReader("[]"))
	require.NoError(t, err)
	assert.Equal(t, []*daemon.Attempt{}, none)
}
