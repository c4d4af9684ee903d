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

package daemon

import (
	log "github.com/sirupsen/logrus"
)

// telemetry event categories and actions
const (
	EventCategoryLoader = "Loader"
	EventNoGamedata     = "NoGamedata"
	EventLoadFailed     = "LoadFailed"
)

// Notifier is the user facing surface the coordinator reports to.
type Notifier interface {
	// Toast shows a transient notice
	Toast(msg string)
	// SetReady marks a readiness indicator as satisfied by file name
	SetReady(indicator, name string)
	// GameMode switches the surface from installer to game
	GameMode()
}

// Runtime is the engine host, waiting for its run dependencies.
type Runtime interface {
	RemoveRunDependency(name string) error
}

//
type Audio interface {
	InitMidi() error
}

// Telemetry receives diagnostic events.
type Telemetry interface {
	Event(category, action, label string)
}

// Collaborators bundles the external parties of the coordinator. Any of them
// may be left nil, in which case a logging implementation is used.
type Collaborators struct {
	Notifier  Notifier
	Runtime   Runtime
	Audio     Audio
	Telemetry Telemetry
}

//
func (c *Collaborators) defaults() {
	if c.Notifier == nil {
		c.Notifier = &LogNotifier{}
	}
	if c.Runtime == nil {
		c.Runtime = &EngineRuntime{}
	}
	if c.Audio == nil {
		c.Audio = &LogAudio{}
	}
	if c.Telemetry == nil {
		c.Telemetry = &LogTelemetry{}
	}
}

// LogNotifier reports to the log.
type LogNotifier struct{}

//
func (n *LogNotifier) Toast(msg string) {
	log.WithField("notice", msg).Warn("user notice")
}

//
func (n *LogNotifier) SetReady(indicator, name string) {
	log.WithFields(log.Fields{
		"indicator": indicator,
		"file":      name,
	}).Info("ready")
}

//
func (n *LogNotifier) GameMode() {
	log.Info("switching to game mode")
}

// LogAudio only records MIDI initialization, for runtimes that set up their
// synthesizer on their own.
type LogAudio struct {
	initialized bool
}

//
func (a *LogAudio) InitMidi() error {
	if !a.initialized {
		log.Info("initializing MIDI")
		a.initialized = true
	}
	return nil
}

//
type LogTelemetry struct{}

//
func (t *LogTelemetry) Event(category, action, label string) {
	log.WithFields(log.Fields{
		"category": category,
		"action":   action,
		"label":    label,
	}).Info("telemetry")
}
