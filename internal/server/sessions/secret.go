package sessions

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dkotlyar/passfort/internal/common"
)

// newRefreshSecret generates a raw refresh secret and its storable hash.
// The raw value is handed to the client exactly once; only the hash is kept.
func newRefreshSecret() (plain string, hashHex string, err error) {
	plain, err = common.MakeRandHexString(32)
	if err != nil {
		return "", "", err
	}
	return plain, HashSecretHex(plain), nil
}

// HashSecretHex returns the SHA-256 of a raw refresh secret as 64 hex chars.
// Refresh secrets are high-entropy random strings, so a fast unsalted hash
// is sufficient; the point is that a leaked sessions table grants nothing.
func HashSecretHex(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
