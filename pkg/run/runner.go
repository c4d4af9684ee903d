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
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
)

//
const runnerHelpPrologue = ""
const runnerHelpEpilogue = `- When a flag can be set via environment variable, the variable name is given
  in parenthesis at the end of the flag explanation. Note however that a flag,
  when specified overrides an environment variable.
`

/*
	NewRunner creates a base runner for commands to use. The parameters are
	passed to the base command wrapped by this runner.
*/
func NewRunner(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(
			use, short, long, helpPrologue, helpEpilogue, exec),
	}
}

//
type Runner struct {
	//
	Command
	//
	Address string
	Port    int
}

//
func (r *Runner) AddBaseSettings() {
	// Implementation Note: This cannot be included in NewRunner, but rather has
	// to be called from the top level command type. Otherwise, we will confuse
	// Cobra/Viper and the settings will not be filled with their values.
	r.AddSetting(&r.Address, "address", "a", "XSYS_ADDRESS", "127.0.0.1",
		"address of daemon's API server", false)
	r.AddSetting(&r.Port, "port", "p", "XSYS_PORT", 8888,
		"port of daemon's API server", false)
}

//
func (r *Runner) serverAddress() string {
	return net.JoinHostPort(r.Address, strconv.Itoa(r.Port))
}

//
func (r *Runner) apiCall(method, path string, json bool,
	body io.Reader) (io.ReadCloser, error) {

	contentType := "text/plain"
	if json {
		contentType = "application/json"
	}

	resp, err := r.apiRequest(method, path, contentType, json, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

/*
	apiRequest sends a request to the daemon. Replies with a status code of 400
	or above are turned into an error carrying the reply message, except for
	request timeouts, which end long polls. Replies with other codes are
	returned to the caller, who needs to close the body.
*/
func (r *Runner) apiRequest(method, path, contentType string, json bool,
	body io.Reader) (*http.Response, error) {

	client := &http.Client{}
	req, err := http.NewRequest(
		method, fmt.Sprintf("http://%s%s", r.serverAddress(), path), body)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", contentType)
	if json {
		req.Header.Add("Accept", "application/json")
	} else {
		req.Header.Add("Accept", "text/plain")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest &&
		resp.StatusCode != http.StatusRequestTimeout {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if m := strings.TrimSpace(string(msg)); m != "" {
			return nil, fmt.Errorf("%s", m)
		}
		return nil, fmt.Errorf("daemon replied with %s", resp.Status)
	}

	return resp, nil
}
