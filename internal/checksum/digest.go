package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"
)

func newHash(a Algorithm) (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case CRC32:
		return crc32.NewIEEE(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, a)
}

// encode renders a finished hash. CRC32 is printed as a plain lowercase hex
// number, so leading zero bytes are dropped ("8a985d", not "008a985d").
func encode(a Algorithm, h hash.Hash) string {
	if a == CRC32 {
		return strconv.FormatUint(uint64(h.(hash.Hash32).Sum32()), 16)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// openReadable opens path for reading, failing with ErrFileUnreadable when it
// is missing, unreadable or a directory.
func openReadable(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileUnreadable, path)
	}
	return f, nil
}

// Digest computes a single algorithm over the file at path.
func Digest(path string, a Algorithm) (string, error) {
	h, err := newHash(a)
	if err != nil {
		return "", err
	}
	f, err := openReadable(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return encode(a, h), nil
}

// DigestAll streams the file at path once and computes every algorithm in
// Algorithms. Each hasher consumes its own pipe in a separate goroutine.
func DigestAll(path string) (FullSet, error) {
	f, err := openReadable(path)
	if err != nil {
		return FullSet{}, err
	}
	defer f.Close()
	return DigestReader(f)
}

// DigestReader computes every algorithm over r.
func DigestReader(r io.Reader) (FullSet, error) {
	hashes := make([]hash.Hash, len(Algorithms))
	readers := make([]*io.PipeReader, len(Algorithms))
	writers := make([]io.Writer, len(Algorithms))
	pipeWriters := make([]*io.PipeWriter, len(Algorithms))
	for i, a := range Algorithms {
		h, err := newHash(a)
		if err != nil {
			return FullSet{}, err
		}
		hashes[i] = h
		readers[i], pipeWriters[i] = io.Pipe()
		writers[i] = pipeWriters[i]
	}

	var g errgroup.Group
	for i := range Algorithms {
		h, pr := hashes[i], readers[i]
		g.Go(func() error {
			_, err := io.Copy(h, pr)
			if err != nil {
				_ = pr.CloseWithError(err)
			}
			return err
		})
	}

	_, copyErr := io.Copy(io.MultiWriter(writers...), r)
	for _, pw := range pipeWriters {
		if copyErr != nil {
			_ = pw.CloseWithError(copyErr)
		} else {
			_ = pw.Close()
		}
	}
	if err := g.Wait(); err != nil {
		return FullSet{}, fmt.Errorf("computing checksums: %w", err)
	}
	if copyErr != nil {
		return FullSet{}, fmt.Errorf("computing checksums: %w", copyErr)
	}

	set := make(Set, len(Algorithms))
	for i, a := range Algorithms {
		set[a] = encode(a, hashes[i])
	}
	return FullSet{set: set}, nil
}
