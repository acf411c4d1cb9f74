// Package fingerprint derives the content digest used to address the result
// cache. The digest is MD5 so caches written by earlier releases stay valid; it
// is an identity key, never a security boundary.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Digest is the lowercase hex MD5 of an image's bytes.
type Digest string

// Of returns the digest of data.
func Of(data []byte) Digest {
	sum := md5.Sum(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// File reads path and returns the digest of its contents.
func File(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return Of(data), nil
}

// Parse validates a textual digest, accepting upper or lower case.
func Parse(value string) (Digest, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if len(value) != md5.Size*2 {
		return "", fmt.Errorf("fingerprint %q: want %d hex characters", value, md5.Size*2)
	}
	if _, err := hex.DecodeString(value); err != nil {
		return "", fmt.Errorf("fingerprint %q: %w", value, err)
	}
	return Digest(value), nil
}

func (d Digest) String() string { return string(d) }

// Short returns an abbreviated form for display.
func (d Digest) Short() string {
	if len(d) <= 12 {
		return string(d)
	}
	return string(d[:12])
}
