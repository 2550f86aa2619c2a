package downloadlog

import "time"

// State is the lifecycle position of one download attempt.
type State string

const (
	NotStarted  State = "NOT_STARTED"
	URLChecked  State = "URL_CHECKED"
	Downloading State = "DOWNLOADING"
	Success     State = "SUCCESS"
	Failed      State = "FAILED"
	// PostProcessFailed keeps Success=true: the archive is intact, only the
	// source reformatting failed.
	PostProcessFailed State = "POST_PROCESS_FAILED"
)

// Terminal reports whether no further transition is expected.
func (s State) Terminal() bool {
	return s == Success || s == Failed || s == PostProcessFailed
}

// Code identifies a recorded failure.
type Code string

const (
	CodeURLNotFound        Code = "URL_NOT_FOUND"
	CodeCheckingURLExists  Code = "ERR_CHECKING_URL_EXISTS"
	CodeDownloading        Code = "ERR_DOWNLOADING"
	CodePrettifying        Code = "ERR_PRETTIFYING"
	CodeComputingChecksums Code = "ERR_COMPUTING_CHECKSUMS"
)

// ErrorRecord is a failure recorded as data.
type ErrorRecord struct {
	Code   Code   `json:"code"`
	Detail string `json:"error"`
}

// Attempt is one planned download: a version from one source.
type Attempt struct {
	ExtensionID        string `json:"extensionId"`
	Version            string `json:"version"`
	Source             string `json:"source"`
	DownloadURL        string `json:"downloadURL"`
	ExtensionPath      string `json:"extensionPath"`
	ExtensionZipPath   string `json:"extensionZipPath"`
	KeepZip            bool   `json:"keepZip"`
	WriteKeyToManifest bool   `json:"writeKeyToManifest"`
}

// Key identifies an attempt across log entries.
type Key struct {
	DownloadURL      string
	ExtensionZipPath string
}

// Key returns the attempt's identity.
func (a Attempt) Key() Key {
	return Key{DownloadURL: a.DownloadURL, ExtensionZipPath: a.ExtensionZipPath}
}

// Entry is one immutable record in the log. The current state of an
// attempt is its last entry.
type Entry struct {
	Attempt
	RunID      string        `json:"runId,omitempty"`
	State      State         `json:"state"`
	URLExists  *bool         `json:"urlExists"`
	Success    *bool         `json:"success"`
	Loading    bool          `json:"loading"`
	Errors     []ErrorRecord `json:"errors,omitempty"`
	RecordedAt time.Time     `json:"recordedAt"`
}

// Succeeded reports whether the archive was written, including when only
// post-processing failed.
func (e Entry) Succeeded() bool {
	return e.Success != nil && *e.Success
}

// OnlyDownloadError reports whether the single recorded error is
// ERR_DOWNLOADING, which is sometimes raised after the file was written.
func (e Entry) OnlyDownloadError() bool {
	return len(e.Errors) == 1 && e.Errors[0].Code == CodeDownloading
}

func boolPtr(b bool) *bool { return &b }

func newEntry(a Attempt, state State) Entry {
	e := Entry{Attempt: a, State: state}
	switch state {
	case NotStarted:
	case URLChecked:
		e.URLExists = boolPtr(true)
		e.Loading = true
	case Downloading:
		e.URLExists = boolPtr(true)
		e.Loading = true
	case Success, PostProcessFailed:
		e.URLExists = boolPtr(true)
		e.Success = boolPtr(true)
	case Failed:
		e.Success = boolPtr(false)
	}
	return e
}

func failed(a Attempt, urlExists bool, code Code, detail string) Entry {
	e := newEntry(a, Failed)
	e.URLExists = boolPtr(urlExists)
	e.Errors = []ErrorRecord{{Code: code, Detail: detail}}
	return e
}
