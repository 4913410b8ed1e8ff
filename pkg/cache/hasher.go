package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// solvePrefix prefixes every solve result key.
const solvePrefix = "solve:"

// BuildSolveKey строит ключ кэша для результата решения.
// variant отличает решения одной сети с разными настройками.
func BuildSolveKey(fingerprint, variant string) string {
	if variant == "" {
		return solvePrefix + fingerprint
	}
	return fmt.Sprintf("%s%s:%s", solvePrefix, fingerprint, variant)
}

// VariantHash сворачивает параметры решения в короткий хеш
func VariantHash(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	return ShortHash([]byte(strings.Join(parts, "\x00")))
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
