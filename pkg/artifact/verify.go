package artifact

import (
	"errors"
	"fmt"
	"os"
)

// Summary describes a verified artifact.
type Summary struct {
	Path    string
	Size    int64
	Entries int
	// HashLength is the hex length shared by all keys, 0 for an empty map.
	HashLength int
}

// Verify checks that path holds a well-formed localization map whose keys
// are lowercase hex digests of one length. The uploader runs only after
// Verify succeeds.
func Verify(path string) (Summary, error) {
	summary := Summary{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return summary, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return summary, err
	}
	if !info.Mode().IsRegular() {
		return summary, fmt.Errorf("%w: %s is not a regular file", ErrInvalid, path)
	}
	summary.Size = info.Size()

	m, err := Read(path)
	if err != nil {
		return summary, err
	}

	for _, key := range m.Keys() {
		if !isLowerHex(key) {
			return summary, fmt.Errorf("%w: %s: key %q is not a lowercase hex digest", ErrInvalid, path, key)
		}
		if summary.HashLength == 0 {
			summary.HashLength = len(key)
		} else if len(key) != summary.HashLength {
			return summary, fmt.Errorf("%w: %s: mixed digest lengths %d and %d", ErrInvalid, path, summary.HashLength, len(key))
		}
	}
	summary.Entries = m.Len()

	return summary, nil
}

func isLowerHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
