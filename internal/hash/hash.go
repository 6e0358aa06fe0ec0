// Package hash computes content fingerprints. A fingerprint is the
// lowercase hex SHA-1 of a file's full byte content; identical bytes
// always produce the same fingerprint, which is what object dedup and
// restore verification rely on.
package hash

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const chunkSize = 8192

// Reader folds r into the digest in bounded chunks so peak memory stays
// constant for large inputs.
func Reader(r io.Reader) (string, error) {
	h := sha1.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File fingerprints the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Reader(f)
}
