// Package installstate holds the verified state of every archived copy and
// the per-version grouping used for duplicate pruning.
package installstate

import (
	"github.com/blackwell-systems/crxledger/internal/checksum"
	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
	"github.com/blackwell-systems/crxledger/internal/downloadlog"
)

// Kind classifies one algorithm's comparison.
type Kind string

const (
	// Missing: the source published a digest that was not computed.
	Missing Kind = "MISSING"
	// Mismatch: the digests differ and nothing excuses it.
	Mismatch Kind = "MISMATCH"
	// MismatchLeadingZero: a crc32 that matches once leading zeroes are dropped.
	MismatchLeadingZero Kind = "MISMATCH_LEADING_ZERO"
	// MismatchWarning: a crc32 mismatch tolerated because other digests exist.
	MismatchWarning Kind = "MISMATCH_WARNING"
)

// Discrepancy is one differing or absent digest.
type Discrepancy struct {
	Algorithm checksum.Algorithm `json:"algo"`
	Kind      Kind               `json:"error"`
	Expected  string             `json:"expected"`
	Actual    string             `json:"actual,omitempty"`
}

// VerificationResult compares a computed set against the published one.
type VerificationResult struct {
	Computed   checksum.FullSet `json:"checksums"`
	Mismatches []Discrepancy    `json:"checksumMismatches"`
	Warnings   []Discrepancy    `json:"checksumWarnings"`
	AllMatch   bool             `json:"checksumsMatch"`
}

// Entry is the verified state of one archived copy.
type Entry struct {
	VersionDetail crx4chrome.VersionDetail `json:"versionDetail"`
	DownloadState downloadlog.Entry        `json:"downloadState"`
	// ChecksumVerification is nil when the checksums could not be computed.
	ChecksumVerification *VerificationResult `json:"installState,omitempty"`
	// PotentialFalseAlarm marks a copy logged as failed that was checked anyway.
	PotentialFalseAlarm bool                      `json:"potentialFalseAlarm"`
	Errors              []downloadlog.ErrorRecord `json:"errors,omitempty"`
}

// Verified reports whether every published digest matched.
func (e Entry) Verified() bool {
	return e.ChecksumVerification != nil && e.ChecksumVerification.AllMatch
}

// ChecksumKey is the serialization used to compare copies of a version.
// Copies without computed checksums share the empty key.
func (e Entry) ChecksumKey() string {
	if e.ChecksumVerification == nil {
		return ""
	}
	return e.ChecksumVerification.Computed.Canonical()
}
