package detector

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
	"github.com/doppelscan/doppel/pkg/models"
	"github.com/zeebo/blake3"
)

// tokenSeparator keeps adjacent token texts from colliding when concatenated
// ("ab"+"c" vs "a"+"bc"). NUL cannot appear inside a token.
const tokenSeparator = "\x00"

// DigestTexts computes a fixed-width blake3 digest over a token text
// sequence. The content digest fed to the exact-match pass is computed over
// the trivia-free sequence with identifiers verbatim, so renamed-only clones
// keep distinct digests and stay distinguishable from byte-identical ones.
// Used only for equality partitioning, not as a security primitive.
func DigestTexts(texts []string) string {
	h := blake3.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte(tokenSeparator))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintTokens computes a cheap 64-bit xxhash of the aliased sequence,
// reported on group members so callers can cross-reference occurrences
// without carrying the full digest.
func FingerprintTokens(tokens []models.NormalizedToken) uint64 {
	h := xxhash.New()
	for _, t := range tokens {
		h.WriteString(t.Text)
		h.WriteString(tokenSeparator)
	}
	return h.Sum64()
}
