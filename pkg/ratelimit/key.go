package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
)

// maxKeyLength caps storage key length; longer keys are hashed.
const maxKeyLength = 64

// TierKey scopes an identity key to a tier so that the same caller keeps an
// independent window per tier. Keys longer than 64 bytes are replaced by the
// first 128 bits of their SHA-256, hex encoded.
func TierKey(tier, key string) string {
	if key == "" {
		return ""
	}

	k := key
	if tier != "" {
		k = tier + ":" + key
	}
	if len(k) <= maxKeyLength {
		return k
	}

	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:16])
}
