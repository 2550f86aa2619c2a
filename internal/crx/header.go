// Package crx reads Chrome extension containers: the CRX2/CRX3 header, the
// zip payload behind it and the manifest of the unpacked copy.
package crx

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

const magic = "Cr24"

// CrxFileHeader field numbers.
const (
	fieldSHA256WithRSA   protowire.Number = 2
	fieldSHA256WithECDSA protowire.Number = 3
	fieldSignedHeader    protowire.Number = 10000
)

// AsymmetricKeyProof field numbers.
const (
	fieldPublicKey protowire.Number = 1
	fieldSignature protowire.Number = 2
)

// SignedData field numbers.
const fieldCrxID protowire.Number = 1

// KeyProof is one public key with its signature over the payload.
type KeyProof struct {
	PublicKey []byte
	Signature []byte
}

// Header is the decoded container header.
type Header struct {
	Version uint32
	RSA     []KeyProof
	ECDSA   []KeyProof
	CrxID   []byte
	// PayloadOffset is where the zip archive starts.
	PayloadOffset int64
}

// ReadHeader decodes the container header from r.
func ReadHeader(r io.Reader) (*Header, error) {
	var prefix [12]byte
	if _, err := io.ReadFull(r, prefix[:8]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCRX, err)
	}
	if string(prefix[:4]) != magic {
		return nil, ErrNotCRX
	}
	version := binary.LittleEndian.Uint32(prefix[4:8])

	switch version {
	case 3:
		if _, err := io.ReadFull(r, prefix[8:12]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		size := binary.LittleEndian.Uint32(prefix[8:12])
		buf, err := readN(r, size)
		if err != nil {
			return nil, err
		}
		h, err := parseCrx3(buf)
		if err != nil {
			return nil, err
		}
		h.Version = 3
		h.PayloadOffset = 12 + int64(size)
		return h, nil

	case 2:
		if _, err := io.ReadFull(r, prefix[8:12]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		var sigLenBuf [4]byte
		if _, err := io.ReadFull(r, sigLenBuf[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		keyLen := binary.LittleEndian.Uint32(prefix[8:12])
		sigLen := binary.LittleEndian.Uint32(sigLenBuf[:])
		key, err := readN(r, keyLen)
		if err != nil {
			return nil, err
		}
		sig, err := readN(r, sigLen)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(key)
		return &Header{
			Version:       2,
			RSA:           []KeyProof{{PublicKey: key, Signature: sig}},
			CrxID:         sum[:16],
			PayloadOffset: 16 + int64(keyLen) + int64(sigLen),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
}

// readN reads exactly n bytes. Lengths come from the file itself, so the
// buffer only grows as data actually arrives.
func readN(r io.Reader, n uint32) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if len(b) != int(n) {
		return nil, fmt.Errorf("%w: header truncated at %d of %d bytes", ErrMalformedHeader, len(b), n)
	}
	return b, nil
}

func parseCrx3(b []byte) (*Header, error) {
	h := &Header{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldSHA256WithRSA, fieldSHA256WithECDSA:
			p, err := parseKeyProof(v)
			if err != nil {
				return nil, err
			}
			if num == fieldSHA256WithRSA {
				h.RSA = append(h.RSA, p)
			} else {
				h.ECDSA = append(h.ECDSA, p)
			}
		case fieldSignedHeader:
			id, err := parseSignedData(v)
			if err != nil {
				return nil, err
			}
			h.CrxID = id
		}
	}
	return h, nil
}

func parseKeyProof(b []byte) (KeyProof, error) {
	var p KeyProof
	err := eachBytesField(b, func(num protowire.Number, v []byte) {
		switch num {
		case fieldPublicKey:
			p.PublicKey = append([]byte(nil), v...)
		case fieldSignature:
			p.Signature = append([]byte(nil), v...)
		}
	})
	return p, err
}

func parseSignedData(b []byte) ([]byte, error) {
	var id []byte
	err := eachBytesField(b, func(num protowire.Number, v []byte) {
		if num == fieldCrxID {
			id = append([]byte(nil), v...)
		}
	})
	return id, err
}

func eachBytesField(b []byte, fn func(protowire.Number, []byte)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, protowire.ParseError(n))
		}
		b = b[n:]
		if typ == protowire.BytesType {
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrMalformedHeader, protowire.ParseError(m))
			}
			fn(num, v)
			b = b[m:]
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

// MainKey returns the RSA public key whose sha256 prefix is the crx id.
func (h *Header) MainKey() ([]byte, error) {
	for _, p := range h.RSA {
		sum := sha256.Sum256(p.PublicKey)
		if len(h.CrxID) > 0 && len(h.CrxID) <= len(sum) && bytes.Equal(sum[:len(h.CrxID)], h.CrxID) {
			return p.PublicKey, nil
		}
	}
	return nil, ErrNoPublicKey
}

// ExtensionID renders the crx id in the a-p alphabet used for extension ids.
func (h *Header) ExtensionID() string {
	out := make([]byte, 0, len(h.CrxID)*2)
	for _, c := range h.CrxID {
		out = append(out, 'a'+(c>>4), 'a'+(c&0x0f))
	}
	return string(out)
}

// ExtractPublicKey returns the base64 DER public key of the crx at path,
// suitable for the "key" field of manifest.json so the unpacked copy keeps
// its extension id.
func ExtractPublicKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h, err := ReadHeader(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	key, err := h.MainKey()
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
