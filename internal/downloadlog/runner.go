package downloadlog

import (
	"errors"
	"fmt"
	"io"

	"github.com/blackwell-systems/crxledger/internal/cache"
	"github.com/blackwell-systems/crxledger/internal/crx"
	"github.com/blackwell-systems/crxledger/internal/fetch"
	"github.com/blackwell-systems/crxledger/internal/logger"
)

// Fetcher performs the network half of an attempt.
type Fetcher interface {
	Head(url string) (fetch.Response, error)
	Get(url string) (io.ReadCloser, int64, error)
}

// ProgressFunc wraps a download body for display. done is called once the
// body has been consumed or abandoned.
type ProgressFunc func(label string, total int64, body io.Reader) (r io.Reader, done func())

// Summary counts what a run did.
type Summary struct {
	Skipped           int
	Succeeded         int
	Failed            int
	PostProcessFailed int
}

// Runner executes planned attempts one at a time, recording every
// transition in the log before moving on.
type Runner struct {
	Log        *Log
	Fetcher    Fetcher
	Archive    *cache.Manager
	Prettifier crx.Prettifier
	Progress   ProgressFunc

	// RetryFailed re-runs attempts whose current state is FAILED.
	RetryFailed bool
}

// Run processes attempts in order. Recorded failures do not stop the run;
// only a failure to persist the log does.
func (r *Runner) Run(attempts []Attempt) (Summary, error) {
	var sum Summary
	for i, a := range attempts {
		log := logger.L().With("attempt", fmt.Sprintf("%d/%d", i+1, len(attempts)), "version", a.Version, "source", a.Source)

		if r.skip(a) {
			log.Debugw("already attempted, skipping", "state", r.Log.State(a.Key()))
			sum.Skipped++
			continue
		}

		state, err := r.runOne(a)
		if err != nil {
			return sum, err
		}
		switch state {
		case Success:
			sum.Succeeded++
			log.Infow("downloaded", "path", a.ExtensionPath)
		case PostProcessFailed:
			sum.PostProcessFailed++
			log.Warnw("downloaded, but prettifying failed", "path", a.ExtensionPath)
		default:
			sum.Failed++
			log.Warnw("download failed", "url", a.DownloadURL)
		}
	}
	return sum, nil
}

func (r *Runner) skip(a Attempt) bool {
	st := r.Log.State(a.Key())
	if !st.Terminal() {
		return false
	}
	return !(r.RetryFailed && st == Failed)
}

func (r *Runner) runOne(a Attempt) (State, error) {
	resp, err := r.Fetcher.Head(a.DownloadURL)
	if err != nil {
		return Failed, r.Log.Append(failed(a, false, CodeCheckingURLExists, "error when checking URL exists: "+err.Error()))
	}
	if !resp.OK {
		return Failed, r.Log.Append(failed(a, false, CodeURLNotFound, fmt.Sprintf("status %d", resp.Status)))
	}
	if err := r.Log.Append(newEntry(a, URLChecked)); err != nil {
		return Failed, err
	}

	if err := r.Log.Append(newEntry(a, Downloading)); err != nil {
		return Failed, err
	}
	if err := r.Download(a); err != nil {
		return Failed, r.Log.Append(failed(a, true, CodeDownloading, err.Error()))
	}
	if err := r.Log.Append(newEntry(a, Success)); err != nil {
		return Success, err
	}

	if r.Prettifier == nil {
		return Success, nil
	}
	if err := r.Prettifier.Format(a.ExtensionPath); err != nil {
		e := newEntry(a, PostProcessFailed)
		e.Errors = []ErrorRecord{{Code: CodePrettifying, Detail: err.Error()}}
		return PostProcessFailed, r.Log.Append(e)
	}
	return Success, nil
}

// download fetches the crx, unpacks it and stamps the public key into the
// manifest so the unpacked copy keeps its extension id. stored reports
// whether the crx reached its final path.
func (r *Runner) download(a Attempt) (stored bool, err error) {
	body, size, err := r.Fetcher.Get(a.DownloadURL)
	if err != nil {
		return false, err
	}
	defer func() { _ = body.Close() }()

	var src io.Reader = body
	if r.Progress != nil {
		wrapped, done := r.Progress(fmt.Sprintf("%s %s (%s)", a.ExtensionID, a.Version, a.Source), size, body)
		defer done()
		src = wrapped
	}
	if _, err := r.Archive.Store(a.ExtensionZipPath, src); err != nil {
		return false, err
	}

	if err := r.Archive.RemoveTree(a.ExtensionPath); err != nil {
		return true, err
	}
	if _, err := crx.Unpack(a.ExtensionZipPath, a.ExtensionPath); err != nil {
		return true, err
	}
	if a.WriteKeyToManifest {
		key, err := crx.ExtractPublicKey(a.ExtensionZipPath)
		if err != nil {
			return true, err
		}
		if err := crx.WriteKeyToManifest(a.ExtensionPath, key); err != nil {
			return true, err
		}
	}
	if !a.KeepZip {
		return true, r.Archive.Remove(a.ExtensionZipPath)
	}
	return true, nil
}

// Download fetches and unpacks a single attempt without touching the log.
// On failure a stored crx is kept and a partial unpack removed.
func (r *Runner) Download(a Attempt) error {
	stored, err := r.download(a)
	if err != nil {
		r.cleanup(a, stored)
	}
	return err
}

// cleanup removes a partial unpack. A stored crx is kept so verification
// can still check the downloaded bytes.
func (r *Runner) cleanup(a Attempt, stored bool) {
	err := r.Archive.RemoveTree(a.ExtensionPath)
	if !stored {
		err = errors.Join(err, r.Archive.Remove(a.ExtensionZipPath))
	}
	if err != nil {
		logger.L().Warnw("could not clean up failed download", "path", a.ExtensionPath, "error", err)
	}
}
