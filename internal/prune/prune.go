// Package prune plans the removal of byte-identical duplicate copies.
package prune

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/crxledger/internal/cache"
	"github.com/blackwell-systems/crxledger/internal/installstate"
	"github.com/blackwell-systems/crxledger/internal/util"
)

// Reasons a version is left for manual review.
const (
	ReasonChecksumsDiffer = "copies have different checksums"
	ReasonNoVendorCopy    = "no copy from the vendor CDN to keep"
	ReasonUnverified      = "checksums missing for at least one copy"
)

// ReviewItem is a multi-copy version the planner refused to touch.
type ReviewItem struct {
	Version string
	Reason  string
}

// Result is a deletion plan rendered as shell commands.
type Result struct {
	Commands         []string
	DeletionsPlanned int
	Review           []ReviewItem
}

// Script returns the commands as a shell script body.
func (r Result) Script() string {
	return strings.Join(r.Commands, "\n") + "\n"
}

// Plan walks versions newest first. A version with several copies that all
// share one checksum set keeps its vendor CDN copy and deletes the rest.
// Versions whose copies disagree, lack computed checksums or have no
// vendor copy are only reported.
func Plan(bv installstate.ByVersion) Result {
	res := Result{Commands: []string{""}}
	for _, version := range bv.Versions() {
		g := bv[version]
		if len(g.Copies) < 2 {
			continue
		}
		if !allComputed(g.Copies) {
			res.Review = append(res.Review, ReviewItem{Version: version, Reason: ReasonUnverified})
			continue
		}
		if g.DistinctChecksums() > 1 {
			res.Review = append(res.Review, ReviewItem{Version: version, Reason: ReasonChecksumsDiffer})
			continue
		}

		var doomed []installstate.Entry
		for _, c := range g.Copies {
			if !cache.IsVendorCopy(c.DownloadState.ExtensionZipPath) {
				doomed = append(doomed, c)
			}
		}
		if len(doomed) == len(g.Copies) {
			res.Review = append(res.Review, ReviewItem{Version: version, Reason: ReasonNoVendorCopy})
			continue
		}

		res.Commands = append(res.Commands, fmt.Sprintf("# %s has %d copies", version, len(g.Copies)))
		for _, c := range doomed {
			res.DeletionsPlanned++
			res.Commands = append(res.Commands, deleteCommands(res.DeletionsPlanned, version,
				c.DownloadState.ExtensionPath, c.DownloadState.ExtensionZipPath)...)
		}
		res.Commands = append(res.Commands, "", "")
	}
	res.Commands[0] = fmt.Sprintf("NUM_DUPES_TO_DELETE=%d", res.DeletionsPlanned)
	return res
}

func allComputed(copies []installstate.Entry) bool {
	for _, c := range copies {
		if c.ChecksumVerification == nil {
			return false
		}
	}
	return true
}

// Each removal is guarded so a missing path never aborts the script.
func deleteCommands(n int, version, dir, zip string) []string {
	return []string{
		fmt.Sprintf(`echo "[%d/$NUM_DUPES_TO_DELETE]: Deleting %s dupe"`, n, version),
		fmt.Sprintf(`rm -rf "%s" || { echo "ERROR deleting path: %s"; }`, dir, dir),
		fmt.Sprintf(`rm "%s" || { echo "ERROR deleting zip: %s"; }`, zip, zip),
	}
}

// WriteScript writes the plan as an executable script.
func WriteScript(path string, r Result) error {
	return util.WriteFileAtomic(path, []byte(r.Script()), 0755)
}
