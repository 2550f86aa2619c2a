package crx

import "errors"

var (
	// ErrNotCRX is returned when the file does not start with the Cr24 magic.
	ErrNotCRX = errors.New("not a crx file")
	// ErrUnsupportedVersion is returned for container versions other than 2 and 3.
	ErrUnsupportedVersion = errors.New("unsupported crx version")
	// ErrMalformedHeader is returned when the container header cannot be decoded.
	ErrMalformedHeader = errors.New("malformed crx header")
	// ErrNoPublicKey is returned when no RSA key proof matches the crx id.
	ErrNoPublicKey = errors.New("no matching public key in crx header")
	// ErrManifestMissing is returned when an unpacked directory has no manifest.json.
	ErrManifestMissing = errors.New("manifest.json not found")
	// ErrUnsafePath is returned for archive entries that escape the target directory.
	ErrUnsafePath = errors.New("zip entry escapes target directory")
)
