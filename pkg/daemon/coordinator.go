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
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/loader"
	"github.com/xelalexv/xsysloader/pkg/store"
)

var (
	// ErrNotInstalled is returned when accessing a game while none is
	// installed.
	ErrNotInstalled = errors.New("no game installed")
	// ErrInstalling is returned by operations refused during an install.
	ErrInstalling = errors.New("install in progress")
)

// user notices on failed installs
const (
	noticeCannotInstall = "cannot install"
	noticeLoadFailed    = noticeCannotInstall + ": unrecognized format"
)

// SourceFactory creates the source for a classification result.
type SourceFactory func(sel *loader.Selection, env *loader.Env) (loader.Source, error)

// Locker is implemented by stores that support an install lock.
type Locker interface {
	Lock() error
	Unlock() error
}

// Config configures a Coordinator.
type Config struct {
	Env           *loader.Env
	Collaborators Collaborators
	// Journal is optional
	Journal *Journal
	// NewSource defaults to loader.NewSource
	NewSource SourceFactory
}

// NewCoordinator creates a coordinator in state idle.
func NewCoordinator(cfg Config) *Coordinator {

	cfg.Collaborators.defaults()
	if cfg.NewSource == nil {
		cfg.NewSource = loader.NewSource
	}

	c := &Coordinator{
		env:        cfg.Env,
		collab:     cfg.Collaborators,
		journal:    cfg.Journal,
		newSource:  cfg.NewSource,
		indicators: map[string]string{},
	}
	c.classifier = loader.NewClassifier(&indicatorSink{c: c})

	return c
}

/*
	Coordinator drives installs. It owns the install state, the classifier,
	and the live source. Gestures, i.e. sets of input files, are submitted via
	Submit. At most one install runs at a time, a gesture arriving while one
	is running is dropped, not queued.
*/
type Coordinator struct {
	env        *loader.Env
	collab     Collaborators
	journal    *Journal
	newSource  SourceFactory
	classifier *loader.Classifier
	//
	lock       sync.Mutex
	state      InstallState
	source     loader.Source
	inputs     []loader.InputFile
	attempt    string
	kind       loader.Kind
	indicators map[string]string
	notices    []string
	message    string
}

// indicatorSink records readiness indicators. Classify is only called with
// the coordinator lock held, so the sink does not lock.
type indicatorSink struct {
	c *Coordinator
}

//
func (s *indicatorSink) SetReady(indicator, name string) {
	if name == "" {
		delete(s.c.indicators, indicator)
	} else {
		s.c.indicators[indicator] = name
	}
	s.c.collab.Notifier.SetReady(indicator, name)
}

/*
	Submit submits a user gesture. If the files are recognized as a complete
	distribution, the install runs before Submit returns. Once started, an
	install is not cancelled by ctx.
*/
func (c *Coordinator) Submit(ctx context.Context, files []loader.InputFile) *Outcome {

	if len(files) == 0 {
		log.Debug("ignoring empty gesture")
		return &Outcome{Result: ResultIgnored, Message: "no files"}
	}

	c.lock.Lock()

	if !c.state.Accepting() {
		state := c.state
		c.lock.Unlock()
		log.WithField("state", state).Info("install in progress, ignoring gesture")
		return &Outcome{Result: ResultIgnored, Message: ErrInstalling.Error()}
	}

	previous := c.state
	c.state = StateClassifying

	sel := c.classifier.Classify(files)
	c.notices = sel.Notices
	for _, n := range sel.Notices {
		c.collab.Notifier.Toast(n)
	}

	if sel.Kind == loader.KindNone {
		c.state = previous
		c.lock.Unlock()
		return c.notRecognized(sel, files)
	}

	src, err := c.newSource(sel, c.env)
	if err != nil {
		c.state = previous
		c.lock.Unlock()
		return &Outcome{
			Result:  ResultUnrecognized,
			Kind:    sel.Kind.String(),
			Message: err.Error(),
			Err:     err,
		}
	}

	old := c.source
	c.source = nil
	c.inputs = nil
	c.attempt = uuid.NewString()
	c.kind = sel.Kind
	c.message = ""
	c.state = StateInstalling
	attempt := c.attempt

	c.lock.Unlock()

	closeSource(old)

	return c.install(context.WithoutCancel(ctx), attempt, sel, src, files)
}

//
func (c *Coordinator) notRecognized(sel *loader.Selection,
	files []loader.InputFile) *Outcome {

	if msg := sel.Unrecognized(files); msg != "" {
		c.collab.Notifier.Toast(msg)
		c.setMessage(msg)
		return &Outcome{
			Result:  ResultUnrecognized,
			Message: msg,
			Err:     loader.ErrUnrecognizedFormat,
		}
	}

	if len(sel.Notices) > 0 {
		msg := sel.Notices[0]
		c.setMessage(msg)
		return &Outcome{
			Result:  ResultUnrecognized,
			Message: msg,
			Err:     loader.ErrUnrecognizedFormat,
		}
	}

	return &Outcome{Result: ResultPending, Message: "waiting for more files"}
}

//
func (c *Coordinator) install(ctx context.Context, attempt string,
	sel *loader.Selection, src loader.Source, files []loader.InputFile) *Outcome {

	kind := sel.Kind

	logger := log.WithFields(log.Fields{
		"attempt": attempt,
		"kind":    kind,
	})
	logger.Info("installing")

	rec := &Attempt{
		ID:      attempt,
		Started: time.Now(),
		Kind:    kind.String(),
		Result:  StateInstalling.String(),
	}
	for _, f := range files {
		rec.Files = append(rec.Files, f.Name())
	}
	c.journalBegin(ctx, rec)

	if locker, ok := c.env.Store.(Locker); ok {
		if err := locker.Lock(); err != nil {
			return c.fail(ctx, rec, src, err)
		}
		defer func() {
			if err := locker.Unlock(); err != nil {
				logger.Errorf("cannot release store lock: %v", err)
			}
		}()
	}

	c.removeManifest()

	if err := src.StartLoad(ctx); err != nil {
		return c.fail(ctx, rec, src, err)
	}

	if src.HasMidi() {
		if err := c.collab.Audio.InitMidi(); err != nil {
			logger.Errorf("cannot initialize MIDI: %v", err)
		}
	}
	c.collab.Notifier.GameMode()
	if err := c.collab.Runtime.RemoveRunDependency(RunDependency); err != nil {
		logger.Errorf("cannot release engine: %v", err)
	}

	c.lock.Lock()
	c.source = src
	c.inputs = sel.Inputs()
	c.state = StateInstalled
	c.lock.Unlock()

	rec.Finished = time.Now()
	rec.Result = ResultInstalled.String()
	rec.Entries = len(src.Resources())
	c.journalFinish(ctx, rec)

	logger.WithField("resources", rec.Entries).Info("installed")

	return &Outcome{
		Result:  ResultInstalled,
		Attempt: attempt,
		Kind:    kind.String(),
		Message: fmt.Sprintf("installed %d resources", rec.Entries),
	}
}

// fail discards the source and reports err. No-game-data messages are shown
// to the user, any other failure is reported as unrecognized format.
func (c *Coordinator) fail(ctx context.Context, rec *Attempt,
	src loader.Source, err error) *Outcome {

	closeSource(src)
	// with the lock held elsewhere, the manifest belongs to another installer
	if !errors.Is(err, store.ErrLocked) {
		c.removeManifest()
	}

	var msg, event string

	if loader.IsNoGamedata(err) {
		msg = fmt.Sprintf("%s: %v", noticeCannotInstall, err)
		event = EventNoGamedata
	} else {
		msg = noticeLoadFailed
		event = EventLoadFailed
	}

	log.WithFields(log.Fields{
		"attempt": rec.ID,
		"kind":    rec.Kind,
	}).Errorf("install failed: %v", err)

	c.collab.Notifier.Toast(msg)
	c.collab.Telemetry.Event(EventCategoryLoader, event, err.Error())

	c.lock.Lock()
	c.source = nil
	c.state = StateFailed
	c.message = msg
	c.lock.Unlock()

	rec.Finished = time.Now()
	rec.Result = ResultFailed.String()
	rec.Message = err.Error()
	c.journalFinish(ctx, rec)

	return &Outcome{
		Result:  ResultFailed,
		Attempt: rec.ID,
		Kind:    rec.Kind,
		Message: msg,
		Err:     err,
	}
}

// a manifest left over from a failed or replaced install must not be picked
// up by the engine
func (c *Coordinator) removeManifest() {
	if err := c.env.Store.Remove(loader.ManifestName); err != nil {
		log.Warnf("cannot remove manifest: %v", err)
	}
}

//
func closeSource(src loader.Source) {
	if cl, ok := src.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			log.Warnf("error closing source: %v", err)
		}
	}
}

//
func (c *Coordinator) setMessage(msg string) {
	c.lock.Lock()
	c.message = msg
	c.lock.Unlock()
}

//
func (c *Coordinator) journalBegin(ctx context.Context, rec *Attempt) {
	if c.journal != nil {
		if err := c.journal.Begin(ctx, rec); err != nil {
			log.Warnf("%v", err)
		}
	}
}

//
func (c *Coordinator) journalFinish(ctx context.Context, rec *Attempt) {
	if c.journal != nil {
		if err := c.journal.Finish(ctx, rec); err != nil {
			log.Warnf("%v", err)
		}
	}
}

/*
	Reset drops the image and metadata files the classifier remembers from
	earlier gestures, so that a zip archive or a set of resource files can be
	installed afterwards. An installed game stays installed. Reset is refused
	with ErrInstalling while an install runs.
*/
func (c *Coordinator) Reset() error {

	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.state.Accepting() {
		return ErrInstalling
	}

	c.classifier.Forget()
	c.notices = nil
	c.message = ""

	log.Info("selection reset")
	return nil
}

// Referenced returns the input files still in use, i.e. those of the
// installed game and those the classifier remembers.
func (c *Coordinator) Referenced() []loader.InputFile {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append(append([]loader.InputFile{}, c.inputs...),
		c.classifier.Remembered()...)
}

// State returns the current install state.
func (c *Coordinator) State() InstallState {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Status returns a snapshot of the coordinator.
func (c *Coordinator) Status() *Status {

	c.lock.Lock()
	defer c.lock.Unlock()

	ret := &Status{
		State:      c.state,
		Attempt:    c.attempt,
		Message:    c.message,
		Notices:    append([]string{}, c.notices...),
		Indicators: map[string]string{},
	}

	for k, v := range c.indicators {
		ret.Indicators[k] = v
	}

	if c.kind != loader.KindNone {
		ret.Kind = c.kind.String()
	}

	if c.source != nil {
		ret.HasMidi = c.source.HasMidi()
		ret.Resources = len(c.source.Resources())
		ret.Tracks = c.source.Tracks()
	}

	return ret
}

//
func (c *Coordinator) currentSource() (loader.Source, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.source == nil {
		return nil, ErrNotInstalled
	}
	return c.source, nil
}

// CDDA returns audio track number track of the installed game.
func (c *Coordinator) CDDA(ctx context.Context, track int) (loader.InputFile, error) {
	src, err := c.currentSource()
	if err != nil {
		return nil, err
	}
	return src.CDDA(ctx, track)
}

// ReloadImage re-attaches the installed game to its image or container.
func (c *Coordinator) ReloadImage(ctx context.Context) error {
	src, err := c.currentSource()
	if err != nil {
		return err
	}
	return src.ReloadImage(ctx)
}

// Manifest returns the manifest of the installed game.
func (c *Coordinator) Manifest() ([]byte, error) {
	if _, err := c.currentSource(); err != nil {
		return nil, err
	}
	return c.env.Store.ReadFile(loader.ManifestName)
}

// History returns up to limit journal records, most recent first.
func (c *Coordinator) History(ctx context.Context, limit int) ([]*Attempt, error) {
	if c.journal == nil {
		return nil, nil
	}
	return c.journal.Recent(ctx, limit)
}

// Resources lists the resource entries of the installed game.
func (c *Coordinator) Resources() ([]loader.ResourceEntry, error) {
	src, err := c.currentSource()
	if err != nil {
		return nil, err
	}
	return src.Resources(), nil
}
