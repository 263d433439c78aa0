package output

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// checksumVerifier hashes everything written through it.
type checksumVerifier struct {
	hash     hash.Hash
	expected string
}

func (v *checksumVerifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

func (v *checksumVerifier) Verify() error {
	if v == nil {
		return nil
	}

	actual := hex.EncodeToString(v.hash.Sum(nil))
	if actual != v.expected {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", v.expected, actual),
		}
	}

	return nil
}

// ParseChecksum splits "algo:hex" into a fresh hash and the expected
// digest. Supported algorithms are md5, sha1, sha256 and sha512.
func ParseChecksum(s string) (hash.Hash, string, error) {
	algo, digest, ok := strings.Cut(s, ":")
	if !ok || digest == "" {
		return nil, "", fmt.Errorf("checksum %q: want algo:hex", s)
	}

	if _, err := hex.DecodeString(digest); err != nil {
		return nil, "", fmt.Errorf("checksum %q: %w", s, err)
	}

	var h hash.Hash
	switch strings.ToLower(algo) {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}

	if len(digest) != hex.EncodedLen(h.Size()) {
		return nil, "", fmt.Errorf("checksum %q: %s digest must be %d hex characters", s, algo, hex.EncodedLen(h.Size()))
	}

	return h, strings.ToLower(digest), nil
}
