// Package extversion parses and orders extension version strings.
//
// A valid version is one to four dot-separated non-negative integers, as
// defined by the Chrome extension manifest (which follows the Omaha update
// protocol). Canonical versions always have exactly four components.
package extversion

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrNoVersionFound is returned when no version appears in the input.
	ErrNoVersionFound = errors.New("no valid version found")
	// ErrTooManyComponents is returned when a version has more than 4 parts.
	ErrTooManyComponents = errors.New("too many parts in version")
	// ErrNonIntegerComponent is returned when a part is not a base-10 integer.
	ErrNonIntegerComponent = errors.New("version contains non-integer part")
)

// Components is the number of parts in a normalized version.
const Components = 4

var (
	versionRe = regexp.MustCompile(`\d+((\.(\d+\.){0,2})(\d+))?`)
	partRe    = regexp.MustCompile(`^\d+$`)
)

// Extract returns the first valid version found in s. For example
// "v8.1.2.3-foobar" yields "8.1.2.3". At most four components are captured.
func Extract(s string) (string, error) {
	m := versionRe.FindString(s)
	if m == "" {
		return "", fmt.Errorf("%w in %q", ErrNoVersionFound, s)
	}
	return m, nil
}

// ExtractNormalized is Extract followed by Normalize.
func ExtractNormalized(s string) (string, error) {
	v, err := Extract(s)
	if err != nil {
		return "", err
	}
	return Normalize(v)
}

// Normalize appends ".0" to v until it has four parts. Parts are kept as
// written, so "1.02" becomes "1.02.0.0".
//
// The empty string normalizes to "0.0.0.0".
func Normalize(v string) (string, error) {
	parts, err := parse(v)
	if err != nil {
		return "", err
	}
	return strings.Join(parts[:], "."), nil
}

// parse splits v into exactly four digit strings, padding with "0".
// Parts may be arbitrarily large.
func parse(v string) ([Components]string, error) {
	out := [Components]string{"0", "0", "0", "0"}
	if v == "" {
		return out, nil
	}
	parts := strings.Split(v, ".")
	if len(parts) > Components {
		return out, fmt.Errorf("%w: %s", ErrTooManyComponents, v)
	}
	for i, p := range parts {
		if !partRe.MatchString(p) {
			return out, fmt.Errorf("%w: %s", ErrNonIntegerComponent, v)
		}
		out[i] = p
	}
	return out, nil
}

// compareParts orders two digit strings numerically.
func compareParts(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// CompareAscending returns -1 if a < b, 1 if a > b and 0 if they are equal
// after normalization.
func CompareAscending(a, b string) (int, error) {
	pa, err := parse(a)
	if err != nil {
		return 0, err
	}
	pb, err := parse(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < Components; i++ {
		if c := compareParts(pa[i], pb[i]); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// CompareDescending is the mirror of CompareAscending.
func CompareDescending(a, b string) (int, error) {
	return CompareAscending(b, a)
}

// Valid reports whether v normalizes without error.
func Valid(v string) bool {
	_, err := parse(v)
	return err == nil
}

// SortAscending sorts versions in place, lowest first. All versions are
// validated before any reordering happens.
func SortAscending(versions []string) error {
	return sortBy(versions, CompareAscending)
}

// SortDescending sorts versions in place, highest first.
func SortDescending(versions []string) error {
	return sortBy(versions, CompareDescending)
}

func sortBy(versions []string, cmp func(a, b string) (int, error)) error {
	for _, v := range versions {
		if _, err := parse(v); err != nil {
			return err
		}
	}
	sort.SliceStable(versions, func(i, j int) bool {
		c, _ := cmp(versions[i], versions[j])
		return c < 0
	})
	return nil
}
