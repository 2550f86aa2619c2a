// Package checksum computes and models the digest sets used to verify
// archived CRX files.
package checksum

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Algorithm names a digest algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
	CRC32  Algorithm = "crc32"
)

// Algorithms lists every supported algorithm in canonical order.
var Algorithms = []Algorithm{MD5, SHA1, SHA256, SHA512, CRC32}

// publishable are the algorithms a source must publish at least one of.
var publishable = []Algorithm{MD5, SHA1, SHA256, CRC32}

var (
	// ErrFileUnreadable is returned when a file is missing or not readable.
	ErrFileUnreadable = errors.New("file does not exist or is not readable")
	// ErrNoPublishedChecksum is returned when a partial set has none of md5/sha1/sha256/crc32.
	ErrNoPublishedChecksum = errors.New("no published checksum (need one of md5, sha1, sha256, crc32)")
	// ErrUnknownAlgorithm is returned for an algorithm name outside Algorithms.
	ErrUnknownAlgorithm = errors.New("unknown checksum algorithm")
	// ErrIncompleteSet is returned when a full set is missing an algorithm.
	ErrIncompleteSet = errors.New("checksum set is incomplete")
)

// ParseAlgorithm maps a (case-insensitive) name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Set maps algorithm to lowercase hex digest.
type Set map[Algorithm]string

// Get returns the digest for a and whether it is present.
func (s Set) Get(a Algorithm) (string, bool) {
	v, ok := s[a]
	return v, ok
}

// Algorithms returns the algorithms present, in canonical order.
func (s Set) Algorithms() []Algorithm {
	var out []Algorithm
	for _, a := range Algorithms {
		if _, ok := s[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Canonical returns a stable serialization used to compare sets for equality.
func (s Set) Canonical() string {
	var b strings.Builder
	for _, a := range s.Algorithms() {
		fmt.Fprintf(&b, "%s=%s;", a, s[a])
	}
	return b.String()
}

// PartialSet is a checksum set as published by a source. It always holds at
// least one of md5, sha1, sha256 or crc32. Build it with NewPartialSet.
type PartialSet struct {
	set Set
}

// NewPartialSet validates and normalizes published digests.
func NewPartialSet(digests map[Algorithm]string) (PartialSet, error) {
	set := make(Set, len(digests))
	for name, v := range digests {
		a, err := ParseAlgorithm(string(name))
		if err != nil {
			return PartialSet{}, err
		}
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[a] = v
	}
	for _, a := range publishable {
		if _, ok := set[a]; ok {
			return PartialSet{set: set}, nil
		}
	}
	return PartialSet{}, ErrNoPublishedChecksum
}

// Set returns a copy of the published digests.
func (p PartialSet) Set() Set {
	out := make(Set, len(p.set))
	for k, v := range p.set {
		out[k] = v
	}
	return out
}

// Len returns how many digests were published.
func (p PartialSet) Len() int { return len(p.set) }

// IsZero reports whether p was never validated.
func (p PartialSet) IsZero() bool { return p.set == nil }

func (p PartialSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.set)
}

func (p *PartialSet) UnmarshalJSON(data []byte) error {
	var raw map[Algorithm]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*p = PartialSet{}
		return nil
	}
	ps, err := NewPartialSet(raw)
	if err != nil {
		return err
	}
	*p = ps
	return nil
}

// FullSet is a locally computed set holding every algorithm.
type FullSet struct {
	set Set
}

// NewFullSet checks that every algorithm is present.
func NewFullSet(s Set) (FullSet, error) {
	for _, a := range Algorithms {
		if _, ok := s[a]; !ok {
			return FullSet{}, fmt.Errorf("%w: missing %s", ErrIncompleteSet, a)
		}
	}
	cp := make(Set, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return FullSet{set: cp}, nil
}

// Get returns the digest for a and whether it is present.
func (f FullSet) Get(a Algorithm) (string, bool) {
	return f.set.Get(a)
}

// Set returns a copy of the digests.
func (f FullSet) Set() Set {
	out := make(Set, len(f.set))
	for k, v := range f.set {
		out[k] = v
	}
	return out
}

// Canonical returns a stable serialization of the set.
func (f FullSet) Canonical() string { return f.set.Canonical() }

// IsZero reports whether f is the zero value.
func (f FullSet) IsZero() bool { return f.set == nil }

func (f FullSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.set)
}

func (f *FullSet) UnmarshalJSON(data []byte) error {
	var raw Set
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = FullSet{}
		return nil
	}
	fs, err := NewFullSet(raw)
	if err != nil {
		return err
	}
	*f = fs
	return nil
}
