package prune_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/crxledger/internal/checksum"
	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
	"github.com/blackwell-systems/crxledger/internal/downloadlog"
	"github.com/blackwell-systems/crxledger/internal/installstate"
	"github.com/blackwell-systems/crxledger/internal/prune"
)

func copyOf(t *testing.T, version, source, crc string) installstate.Entry {
	t.Helper()
	fs, err := checksum.NewFullSet(checksum.Set{
		checksum.MD5: "m", checksum.SHA1: "s1", checksum.SHA256: "s256",
		checksum.SHA512: "s512", checksum.CRC32: crc,
	})
	if err != nil {
		t.Fatal(err)
	}
	dir := "/data/abc/" + version + "/" + source
	return installstate.Entry{
		VersionDetail: crx4chrome.VersionDetail{Version: version},
		DownloadState: downloadlog.Entry{Attempt: downloadlog.Attempt{
			Version: version, Source: source, ExtensionPath: dir, ExtensionZipPath: dir + ".crx",
		}},
		ChecksumVerification: &installstate.VerificationResult{Computed: fs, AllMatch: true},
	}
}

func TestPlan_IdenticalCopiesKeepVendor(t *testing.T) {
	bv := installstate.GroupByVersion([]installstate.Entry{
		copyOf(t, "1.0", "google", "1"),
		copyOf(t, "1.0", "crx4chrome", "1"),
	})
	res := prune.Plan(bv)

	if res.DeletionsPlanned != 1 {
		t.Fatalf("DeletionsPlanned = %d, want 1", res.DeletionsPlanned)
	}
	want := []string{
		"NUM_DUPES_TO_DELETE=1",
		"# 1.0 has 2 copies",
		`echo "[1/$NUM_DUPES_TO_DELETE]: Deleting 1.0 dupe"`,
		`rm -rf "/data/abc/1.0/crx4chrome" || { echo "ERROR deleting path: /data/abc/1.0/crx4chrome"; }`,
		`rm "/data/abc/1.0/crx4chrome.crx" || { echo "ERROR deleting zip: /data/abc/1.0/crx4chrome.crx"; }`,
		"",
		"",
	}
	if strings.Join(res.Commands, "\n") != strings.Join(want, "\n") {
		t.Errorf("Commands =\n%s\nwant\n%s", strings.Join(res.Commands, "\n"), strings.Join(want, "\n"))
	}
	if strings.Contains(res.Script(), "google") {
		t.Error("vendor copy must never be deleted")
	}
}

func TestPlan_DifferingChecksumsFlagged(t *testing.T) {
	bv := installstate.GroupByVersion([]installstate.Entry{
		copyOf(t, "1.0", "google", "1"),
		copyOf(t, "1.0", "crx4chrome", "2"),
	})
	res := prune.Plan(bv)

	if res.DeletionsPlanned != 0 {
		t.Errorf("DeletionsPlanned = %d, want 0", res.DeletionsPlanned)
	}
	if len(res.Review) != 1 || res.Review[0].Reason != prune.ReasonChecksumsDiffer {
		t.Errorf("Review = %+v", res.Review)
	}
	if len(res.Commands) != 1 || res.Commands[0] != "NUM_DUPES_TO_DELETE=0" {
		t.Errorf("Commands = %q", res.Commands)
	}
}

func TestPlan_NoVendorCopyFlagged(t *testing.T) {
	a := copyOf(t, "1.0", "crx4chrome", "1")
	b := copyOf(t, "1.0", "crx4chrome", "1")
	b.DownloadState.ExtensionZipPath = "/elsewhere/crx4chrome.crx"
	res := prune.Plan(installstate.GroupByVersion([]installstate.Entry{a, b}))

	if res.DeletionsPlanned != 0 || len(res.Review) != 1 || res.Review[0].Reason != prune.ReasonNoVendorCopy {
		t.Errorf("res = %+v", res)
	}
}

func TestPlan_UncomputedCopiesFlagged(t *testing.T) {
	a := copyOf(t, "1.0", "google", "1")
	b := copyOf(t, "1.0", "crx4chrome", "1")
	a.ChecksumVerification, b.ChecksumVerification = nil, nil
	res := prune.Plan(installstate.GroupByVersion([]installstate.Entry{a, b}))

	if res.DeletionsPlanned != 0 || len(res.Review) != 1 || res.Review[0].Reason != prune.ReasonUnverified {
		t.Errorf("res = %+v", res)
	}
}

func TestPlan_CounterRunsAcrossVersions(t *testing.T) {
	bv := installstate.GroupByVersion([]installstate.Entry{
		copyOf(t, "1.0", "google", "1"),
		copyOf(t, "1.0", "crx4chrome", "1"),
		copyOf(t, "2.0", "google", "2"),
		copyOf(t, "2.0", "crx4chrome", "2"),
		copyOf(t, "3.0", "google", "3"),
	})
	res := prune.Plan(bv)
	if res.DeletionsPlanned != 2 {
		t.Fatalf("DeletionsPlanned = %d", res.DeletionsPlanned)
	}
	script := res.Script()
	first := strings.Index(script, "Deleting 2.0 dupe")
	second := strings.Index(script, "Deleting 1.0 dupe")
	if first < 0 || second < first {
		t.Errorf("versions not newest first:\n%s", script)
	}
	if !strings.Contains(script, `"[2/$NUM_DUPES_TO_DELETE]: Deleting 1.0 dupe"`) {
		t.Errorf("counter not carried:\n%s", script)
	}
}

func TestWriteScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prune-dupes.sh")
	res := prune.Plan(installstate.GroupByVersion(nil))
	if err := prune.WriteScript(path, res); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "NUM_DUPES_TO_DELETE=0\n" {
		t.Errorf("script = %q", data)
	}
	fi, _ := os.Stat(path)
	if fi.Mode().Perm()&0100 == 0 {
		t.Errorf("script not executable: %v", fi.Mode())
	}
}
