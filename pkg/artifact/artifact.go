// Package artifact writes, reads and verifies the localization map file.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blendin/extractor/pkg/domain"
)

// DefaultPath is the artifact file name the uploader expects.
const DefaultPath = "localizationMap.json"

const indent = "  "

var (
	// ErrWrite is returned when the artifact cannot be written.
	ErrWrite = errors.New("artifact: write failed")
	// ErrNotFound is returned when the artifact does not exist.
	ErrNotFound = errors.New("artifact: not found")
	// ErrInvalid is returned when the artifact is not a localization map.
	ErrInvalid = errors.New("artifact: invalid content")
)

// Encode renders m as two-space indented JSON without a trailing newline.
func Encode(m *domain.LocalizationMap) ([]byte, error) {
	compact, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores m at path. The content is written to a temporary file in
// the same directory and renamed over path, so readers never observe a
// partial artifact.
func Write(path string, m *domain.LocalizationMap) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	return nil
}

// Read loads the artifact at path, keeping entry and field order.
func Read(path string) (*domain.LocalizationMap, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses a localization map from r. Every value must be an object
// of string fields.
func Decode(r io.Reader) (*domain.LocalizationMap, error) {
	dec := json.NewDecoder(r)
	m := domain.NewLocalizationMap()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		hash, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		record, err := decodeRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", hash, err)
		}
		if !m.Insert(hash, record) {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalid, hash)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalid)
	}

	return m, nil
}

func decodeRecord(dec *json.Decoder) (domain.TextRecord, error) {
	var record domain.TextRecord

	if err := expectDelim(dec, '{'); err != nil {
		return record, err
	}
	for dec.More() {
		name, err := stringToken(dec)
		if err != nil {
			return record, err
		}
		value, err := stringToken(dec)
		if err != nil {
			return record, fmt.Errorf("field %q: %w", name, err)
		}
		record.Set(name, value)
	}
	return record, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrInvalid, want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %v", ErrInvalid, tok)
	}
	return s, nil
}
