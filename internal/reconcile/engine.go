package reconcile

import (
	"fmt"

	"github.com/blackwell-systems/crxledger/internal/checksum"
	"github.com/blackwell-systems/crxledger/internal/downloadlog"
	"github.com/blackwell-systems/crxledger/internal/history"
	"github.com/blackwell-systems/crxledger/internal/installstate"
	"github.com/blackwell-systems/crxledger/internal/logger"
)

// Digester computes the full checksum set of a file.
type Digester func(path string) (checksum.FullSet, error)

// Sink persists the install state built so far.
type Sink interface {
	Save(entries []installstate.Entry) error
}

// Engine builds install state from the download log.
type Engine struct {
	Digest Digester
	Sink   Sink

	// OnItem, if set, is called before each planned attempt is handled.
	OnItem func(done, total int, a downloadlog.Attempt)
}

// NewEngine returns an Engine that digests with checksum.DigestAll.
func NewEngine(sink Sink) *Engine {
	return &Engine{Digest: checksum.DigestAll, Sink: sink}
}

// Reconcile verifies every planned attempt. Entries in existing that
// already fully matched are carried over without recomputing. State is
// persisted after every verified item and once at the end.
func (e *Engine) Reconcile(existing []installstate.Entry, log *downloadlog.Log, mf *history.MetadataFile, attempts []downloadlog.Attempt) ([]installstate.Entry, error) {
	out := []installstate.Entry{}
	for i, a := range attempts {
		if e.OnItem != nil {
			e.OnItem(i+1, len(attempts), a)
		}
		l := logger.L().With("zip", a.ExtensionZipPath)

		if prev, ok := findExisting(existing, a); ok {
			if prev.Verified() {
				l.Debugw("already verified, skipping")
				out = append(out, prev)
				continue
			}
			l.Infow("recomputing, checksums did not match")
		}

		meta, ok := mf.FindByDownloadURL(a.DownloadURL)
		if !ok {
			return out, fmt.Errorf("%w: %s", ErrNoMetadata, a.ExtensionPath)
		}

		logEntry, ok := log.FindTerminalByURL(a.DownloadURL)
		if !ok {
			l.Warnw("no finished download log entry, skipping")
			continue
		}

		falseAlarm := false
		if !logEntry.Succeeded() {
			if !logEntry.OnlyDownloadError() {
				l.Infow("download failed, skipping", "state", logEntry.State)
				continue
			}
			l.Infow("download failed with ERR_DOWNLOADING, checking anyway")
			falseAlarm = true
		}

		entry := installstate.Entry{
			VersionDetail:       meta.Detail,
			DownloadState:       logEntry,
			PotentialFalseAlarm: falseAlarm,
		}
		computed, err := e.Digest(a.ExtensionZipPath)
		if err != nil {
			l.Errorw("error computing checksums", "error", err)
			entry.Errors = []downloadlog.ErrorRecord{{Code: downloadlog.CodeComputingChecksums, Detail: err.Error()}}
		} else {
			res := Classify(meta.Detail.Hashes, computed.Set())
			entry.ChecksumVerification = &res
			for _, m := range res.Mismatches {
				l.Warnw("checksum mismatch", "algo", m.Algorithm, "kind", m.Kind, "expected", m.Expected, "actual", m.Actual)
			}
			for _, w := range res.Warnings {
				l.Infow("checksum warning", "algo", w.Algorithm, "kind", w.Kind, "expected", w.Expected, "actual", w.Actual)
			}
		}

		out = append(out, entry)
		if err := e.Sink.Save(out); err != nil {
			return out, fmt.Errorf("persisting install state: %w", err)
		}
	}
	if err := e.Sink.Save(out); err != nil {
		return out, fmt.Errorf("persisting install state: %w", err)
	}
	return out, nil
}

func findExisting(existing []installstate.Entry, a downloadlog.Attempt) (installstate.Entry, bool) {
	for _, prev := range existing {
		if prev.DownloadState.ExtensionPath == a.ExtensionPath {
			return prev, true
		}
	}
	return installstate.Entry{}, false
}
