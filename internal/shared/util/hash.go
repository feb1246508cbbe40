package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ownerPrefixLen keeps staged keys short while staying collision free in practice.
const ownerPrefixLen = 32

// OwnerPrefix maps an owner id to the directory segment used for staged
// uploads. Raw ids may contain separators such as "|" or "/".
func OwnerPrefix(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])[:ownerPrefixLen]
}
