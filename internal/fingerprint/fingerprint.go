package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
)

// Prefix tags every digest produced by this package.
const Prefix = "sha256:"

// ErrMissing reports that a fingerprinted file does not exist.
var ErrMissing = errors.New("fingerprint: file missing")

// Text returns the digest of the UTF-8 encoding of s.
func Text(s string) string {
	sum := sha256.Sum256([]byte(s))
	return Prefix + hex.EncodeToString(sum[:])
}

// File streams the file at path through sha256.
func File(path string) (string, error) {
	h := sha256.New()
	if err := hashFile(h, path); err != nil {
		return "", err
	}
	return format(h), nil
}

// Value returns the digest of the JSON encoding of v. Struct fields encode in
// declaration order and map keys sorted, so equal values always hash equally.
func Value(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode fingerprint value: %w", err)
	}
	return Text(string(data)), nil
}

// SequenceEntry names one member of an ordered file sequence.
type SequenceEntry struct {
	ID   string
	Path string
}

// Sequence folds the contents of entries, in order, into one digest. A missing
// file contributes the token "<id>:missing" instead of failing.
func Sequence(entries []SequenceEntry) (string, error) {
	h := sha256.New()
	for _, entry := range entries {
		err := hashFile(h, entry.Path)
		if errors.Is(err, ErrMissing) {
			_, _ = io.WriteString(h, entry.ID+":missing")
			continue
		}
		if err != nil {
			return "", err
		}
	}
	return format(h), nil
}

func hashFile(h hash.Hash, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func format(h hash.Hash) string {
	return Prefix + hex.EncodeToString(h.Sum(nil))
}
