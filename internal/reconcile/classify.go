// Package reconcile decides whether archived copies match the checksums
// their source published.
package reconcile

import (
	"strings"

	"github.com/blackwell-systems/crxledger/internal/checksum"
	"github.com/blackwell-systems/crxledger/internal/installstate"
)

// Classify compares computed digests against the published ones, in
// canonical algorithm order. Only published algorithms are compared.
//
// crc32 is tolerated in two ways: a published value that is the computed
// one with leading zeroes is a warning, and any other crc32 mismatch is a
// warning when the source also published another digest. Everything else
// that differs is a hard mismatch.
func Classify(published checksum.PartialSet, computed checksum.Set) installstate.VerificationResult {
	res := installstate.VerificationResult{
		Mismatches: []installstate.Discrepancy{},
		Warnings:   []installstate.Discrepancy{},
	}
	if fs, err := checksum.NewFullSet(computed); err == nil {
		res.Computed = fs
	}

	expected := published.Set()
	for _, alg := range expected.Algorithms() {
		want := expected[alg]
		got, ok := computed[alg]
		d := installstate.Discrepancy{Algorithm: alg, Expected: want, Actual: got}

		switch {
		case !ok:
			d.Kind = installstate.Missing
			res.Mismatches = append(res.Mismatches, d)
		case got == want:
			continue
		case alg == checksum.CRC32 && leadingZeroMatch(want, got):
			d.Kind = installstate.MismatchLeadingZero
			res.Warnings = append(res.Warnings, d)
		case alg == checksum.CRC32 && published.Len() > 1:
			d.Kind = installstate.MismatchWarning
			res.Warnings = append(res.Warnings, d)
		default:
			d.Kind = installstate.Mismatch
			res.Mismatches = append(res.Mismatches, d)
		}
	}
	res.AllMatch = len(res.Mismatches) == 0
	return res
}

// leadingZeroMatch reports whether expected is actual preceded by one or
// more zeroes, e.g. 008a985d against 8a985d.
func leadingZeroMatch(expected, actual string) bool {
	if actual == "" || !strings.HasSuffix(expected, actual) {
		return false
	}
	prefix := strings.TrimSuffix(expected, actual)
	return prefix != "" && strings.Trim(prefix, "0") == ""
}
