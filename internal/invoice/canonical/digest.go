package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DigestLen is the length of a rendered digest: 64 lowercase hex characters.
const DigestLen = 64

// Digest computes the SHA-256 fingerprint of a canonical byte sequence. It is
// pure and has no failure mode; same bytes, same digest, on any platform.
func Digest(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two digests after lowercase normalization, so a
// digest that was stored or transported uppercased still verifies.
func DigestEqual(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}
