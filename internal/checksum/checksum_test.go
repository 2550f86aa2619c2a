package checksum_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/crxledger/internal/checksum"
)

// Reference values from md5sum, sha1sum, sha256sum, sha512sum and crc32
// over the 11 bytes "hello world".
var helloWorld = checksum.Set{
	checksum.MD5:    "5eb63bbbe01eeed093cb22bb8f5acdc3",
	checksum.SHA1:   "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
	checksum.SHA256: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
	checksum.SHA512: "309ecc489c12d6eb4cc40f50c902f2b4d0ed77ee511a7c7a9bcd3ca86d4cd86f" +
		"989dd35bc5ff499670da34255b45b0cfd830e81f605dcf7dc5542e93ae9cd76f",
	checksum.CRC32: "d4a1185", // 0d4a1185 without the leading zero
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.bin")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- DigestAll ---

func TestDigestAll_KnownFile(t *testing.T) {
	path := writeFile(t, "hello world")
	got, err := checksum.DigestAll(path)
	if err != nil {
		t.Fatalf("DigestAll: %v", err)
	}
	for _, a := range checksum.Algorithms {
		v, ok := got.Get(a)
		if !ok {
			t.Errorf("missing %s", a)
			continue
		}
		if v != helloWorld[a] {
			t.Errorf("%s = %q, want %q", a, v, helloWorld[a])
		}
	}
}

func TestDigestAll_LargeFileMatchesSingleDigest(t *testing.T) {
	path := writeFile(t, strings.Repeat("0123456789abcdef", 1<<16))
	all, err := checksum.DigestAll(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range checksum.Algorithms {
		one, err := checksum.Digest(path, a)
		if err != nil {
			t.Fatalf("Digest(%s): %v", a, err)
		}
		if v, _ := all.Get(a); v != one {
			t.Errorf("%s: DigestAll=%q Digest=%q", a, v, one)
		}
	}
}

func TestDigestAll_EmptyFileCRC(t *testing.T) {
	got, err := checksum.DigestAll(writeFile(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get(checksum.CRC32); v != "0" {
		t.Errorf("crc32(empty) = %q, want %q", v, "0")
	}
}

func TestDigestAll_Missing(t *testing.T) {
	_, err := checksum.DigestAll("/no/such/file.crx")
	if !errors.Is(err, checksum.ErrFileUnreadable) {
		t.Errorf("expected ErrFileUnreadable, got %v", err)
	}
}

func TestDigestAll_Directory(t *testing.T) {
	_, err := checksum.DigestAll(t.TempDir())
	if !errors.Is(err, checksum.ErrFileUnreadable) {
		t.Errorf("expected ErrFileUnreadable for directory, got %v", err)
	}
}

// --- PartialSet ---

func TestNewPartialSet_RequiresPublishable(t *testing.T) {
	_, err := checksum.NewPartialSet(map[checksum.Algorithm]string{checksum.SHA512: "abc"})
	if !errors.Is(err, checksum.ErrNoPublishedChecksum) {
		t.Errorf("sha512-only set: got %v, want ErrNoPublishedChecksum", err)
	}
	_, err = checksum.NewPartialSet(map[checksum.Algorithm]string{checksum.MD5: "  "})
	if !errors.Is(err, checksum.ErrNoPublishedChecksum) {
		t.Errorf("blank md5: got %v, want ErrNoPublishedChecksum", err)
	}
}

func TestNewPartialSet_Lowercases(t *testing.T) {
	ps, err := checksum.NewPartialSet(map[checksum.Algorithm]string{checksum.CRC32: "008A985D"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ps.Set()[checksum.CRC32]; got != "008a985d" {
		t.Errorf("crc32 = %q, want lowercase", got)
	}
}

func TestNewPartialSet_UnknownAlgorithm(t *testing.T) {
	_, err := checksum.NewPartialSet(map[checksum.Algorithm]string{"whirlpool": "ab", checksum.MD5: "cd"})
	if !errors.Is(err, checksum.ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestPartialSet_JSONValidatesOnDecode(t *testing.T) {
	var ps checksum.PartialSet
	if err := json.Unmarshal([]byte(`{"sha512":"ff"}`), &ps); err == nil {
		t.Error("expected decode error for set without publishable digest")
	}
	if err := json.Unmarshal([]byte(`{"sha1":"ff","crc32":"1"}`), &ps); err != nil {
		t.Fatal(err)
	}
	if ps.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ps.Len())
	}
}

// --- FullSet ---

func TestNewFullSet_Incomplete(t *testing.T) {
	_, err := checksum.NewFullSet(checksum.Set{checksum.MD5: "x"})
	if !errors.Is(err, checksum.ErrIncompleteSet) {
		t.Errorf("expected ErrIncompleteSet, got %v", err)
	}
}

func TestCanonical_OrderIndependent(t *testing.T) {
	a, _ := checksum.NewFullSet(helloWorld)
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var b checksum.FullSet
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatal(err)
	}
	if a.Canonical() != b.Canonical() {
		t.Errorf("canonical mismatch:\n%s\n%s", a.Canonical(), b.Canonical())
	}
}

func TestParseAlgorithm(t *testing.T) {
	a, err := checksum.ParseAlgorithm(" SHA256 ")
	if err != nil || a != checksum.SHA256 {
		t.Errorf("ParseAlgorithm = %q, %v", a, err)
	}
}
