// Package downloadlog records every download attempt in an append-only log
// and drives the download stage from it.
package downloadlog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/blackwell-systems/crxledger/internal/util"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://crxledger.local/schemas/download-log.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func logSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("download log schema load failed: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Log is the durable, append-only record of download attempts. Entries are
// never modified; every Append rewrites the whole file before returning.
type Log struct {
	path    string
	runID   string
	entries []Entry
	now     func() time.Time
}

// Open loads the log at path. A missing file is an empty log.
func Open(path string) (*Log, error) {
	l := &Log{path: path, runID: uuid.NewString(), now: time.Now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return l, nil
}

func validate(data []byte) error {
	schema, err := logSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}
	return nil
}

// Path returns the backing file.
func (l *Log) Path() string { return l.path }

// RunID identifies entries written by this process.
func (l *Log) RunID() string { return l.runID }

// Append records e and persists the full log atomically.
func (l *Log) Append(e Entry) error {
	if e.RunID == "" {
		e.RunID = l.runID
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = l.now().UTC()
	}
	l.entries = append(l.entries, e)
	if err := util.WriteJSON(l.path, l.entries); err != nil {
		l.entries = l.entries[:len(l.entries)-1]
		return fmt.Errorf("persisting download log: %w", err)
	}
	return nil
}

// Entries returns a copy of every entry in append order.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Current folds the log for k: the last entry recorded for it.
func (l *Log) Current(k Key) (Entry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Key() == k {
			return l.entries[i], true
		}
	}
	return Entry{}, false
}

// State returns the current state of k, NotStarted when it was never tried.
func (l *Log) State(k Key) State {
	if e, ok := l.Current(k); ok {
		return e.State
	}
	return NotStarted
}

// Attempts returns the current entry of every attempt, in first-seen order.
func (l *Log) Attempts() []Entry {
	index := make(map[Key]int)
	var out []Entry
	for _, e := range l.entries {
		k := e.Key()
		if i, ok := index[k]; ok {
			out[i] = e
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}

// FindTerminalByURL returns the last entry whose download URL is url, if
// that entry is terminal. An attempt still in flight is not found.
func (l *Log) FindTerminalByURL(url string) (Entry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.DownloadURL != url {
			continue
		}
		if !e.State.Terminal() {
			return Entry{}, false
		}
		return e, true
	}
	return Entry{}, false
}
