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
	"database/sql"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS attempts (
	id       TEXT PRIMARY KEY,
	started  TEXT NOT NULL,
	finished TEXT,
	kind     TEXT NOT NULL,
	files    TEXT NOT NULL,
	result   TEXT NOT NULL,
	message  TEXT NOT NULL DEFAULT '',
	entries  INTEGER NOT NULL DEFAULT 0
)`

// fixed width, so that timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Attempt is a journal record of one install attempt.
type Attempt struct {
	ID       string    `json:"id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished,omitempty"`
	Kind     string    `json:"kind"`
	Files    []string  `json:"files"`
	Result   string    `json:"result"`
	Message  string    `json:"message,omitempty"`
	Entries  int       `json:"entries"`
}

// Journal keeps the history of install attempts in an SQLite database.
type Journal struct {
	db   *sql.DB
	path string
}

// OpenJournal opens or creates the journal database at path.
func OpenJournal(path string) (*Journal, error) {

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(journalSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	log.WithField("path", path).Info("using install journal")
	return &Journal{db: db, path: path}, nil
}

//
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Begin records the start of attempt a.
func (j *Journal) Begin(ctx context.Context, a *Attempt) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO attempts (id, started, kind, files, result)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Started.UTC().Format(timeLayout), a.Kind,
		strings.Join(a.Files, "\n"), a.Result)
	if err != nil {
		return fmt.Errorf("record attempt %s: %w", a.ID, err)
	}
	return nil
}

// Finish records the outcome of attempt a.
func (j *Journal) Finish(ctx context.Context, a *Attempt) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE attempts SET finished = ?, result = ?, message = ?, entries = ?
		 WHERE id = ?`,
		a.Finished.UTC().Format(timeLayout), a.Result, a.Message,
		a.Entries, a.ID)
	if err != nil {
		return fmt.Errorf("record outcome of attempt %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to limit attempts, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]*Attempt, error) {

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started, finished, kind, files, result, message, entries
		 FROM attempts ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var ret []*Attempt

	for rows.Next() {

		var started string
		var finished sql.NullString
		var files string
		a := &Attempt{}

		if err := rows.Scan(&a.ID, &started, &finished, &a.Kind, &files,
			&a.Result, &a.Message, &a.Entries); err != nil {
			return nil, fmt.Errorf("read journal: %w", err)
		}

		if a.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("attempt %s: %w", a.ID, err)
		}
		if finished.Valid {
			if a.Finished, err = time.Parse(
				timeLayout, finished.String); err != nil {
				return nil, fmt.Errorf("attempt %s: %w", a.ID, err)
			}
		}
		if files != "" {
			a.Files = strings.Split(files, "\n")
		}

		ret = append(ret, a)
	}

	return ret, rows.Err()
}
