package installstate

import (
	"sort"

	"github.com/blackwell-systems/crxledger/internal/extversion"
)

// CodeDuplicateEntry flags a second entry for an already grouped copy.
const CodeDuplicateEntry = "DUPLICATE_ENTRY"

// Warning is a grouping anomaly kept alongside a version's copies.
type Warning struct {
	Code    string `json:"code"`
	Details Entry  `json:"details"`
}

// VersionGroup is every archived copy of one version.
type VersionGroup struct {
	Copies   []Entry   `json:"copies"`
	Warnings []Warning `json:"warnings"`
}

// ByVersion maps version to its copies.
type ByVersion map[string]*VersionGroup

// GroupByVersion groups entries by version. A copy is identified by its zip
// path; a repeat is recorded as a DUPLICATE_ENTRY warning instead of a copy.
func GroupByVersion(entries []Entry) ByVersion {
	bv := make(ByVersion)
	for _, e := range entries {
		v := e.VersionDetail.Version
		g, ok := bv[v]
		if !ok {
			g = &VersionGroup{Copies: []Entry{}, Warnings: []Warning{}}
			bv[v] = g
		}
		if g.hasCopy(e.DownloadState.ExtensionZipPath) {
			g.Warnings = append(g.Warnings, Warning{Code: CodeDuplicateEntry, Details: e})
			continue
		}
		g.Copies = append(g.Copies, e)
	}
	return bv
}

func (g *VersionGroup) hasCopy(zipPath string) bool {
	for _, c := range g.Copies {
		if c.DownloadState.ExtensionZipPath == zipPath {
			return true
		}
	}
	return false
}

// Versions returns the keys newest first. Keys that do not parse as
// versions sort after the rest, in string order.
func (bv ByVersion) Versions() []string {
	var valid, invalid []string
	for v := range bv {
		if extversion.Valid(v) {
			valid = append(valid, v)
		} else {
			invalid = append(invalid, v)
		}
	}
	// Every key in valid passed extversion.Valid, so cmp cannot fail.
	// Equal versions such as "1.0" and "1.0.0" fall back to string order.
	sort.Slice(valid, func(i, j int) bool {
		c, _ := extversion.CompareDescending(valid[i], valid[j])
		if c != 0 {
			return c < 0
		}
		return valid[i] < valid[j]
	})
	sort.Strings(invalid)
	return append(valid, invalid...)
}

// VersionReport summarizes one version for inspection.
type VersionReport struct {
	Version   string
	Copies    int
	Checksums int
}

// Disagree reports whether copies of the version have different checksums.
func (r VersionReport) Disagree() bool { return r.Checksums > 1 }

// Inspect reports every version with more than one copy, newest first.
func Inspect(bv ByVersion) []VersionReport {
	var out []VersionReport
	for _, v := range bv.Versions() {
		g := bv[v]
		if len(g.Copies) < 2 {
			continue
		}
		out = append(out, VersionReport{Version: v, Copies: len(g.Copies), Checksums: g.DistinctChecksums()})
	}
	return out
}

// DistinctChecksums counts the distinct computed checksum sets of the copies.
func (g *VersionGroup) DistinctChecksums() int {
	seen := make(map[string]bool)
	for _, c := range g.Copies {
		seen[c.ChecksumKey()] = true
	}
	return len(seen)
}
