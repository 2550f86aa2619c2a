package crx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Unpack extracts the zip payload of the crx at path into dir. The target
// directory is created if needed. Returns the decoded header.
func Unpack(path, dir string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	h, err := ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if h.PayloadOffset > fi.Size() {
		return nil, fmt.Errorf("%s: %w: header exceeds file size", path, ErrMalformedHeader)
	}

	payload := io.NewSectionReader(f, h.PayloadOffset, fi.Size()-h.PayloadOffset)
	zr, err := zip.NewReader(payload, payload.Size())
	if err != nil {
		return nil, fmt.Errorf("open zip payload: %w", err)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	for _, zf := range zr.File {
		if err := extractFile(zf, dir); err != nil {
			return nil, fmt.Errorf("extract %s: %w", zf.Name, err)
		}
	}
	return h, nil
}

func extractFile(zf *zip.File, dir string) error {
	target := filepath.Join(dir, filepath.FromSlash(zf.Name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrUnsafePath
	}

	if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
		return os.MkdirAll(target, 0750)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return err
	}

	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
