package dedup

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// KeyPrefix namespaces dedup keys in shared stores.
const KeyPrefix = "tfcm_"

// Key returns the suppression key for a nonce and client IP.
// The IP is hashed so raw addresses never reach the store.
func Key(nonce, clientIP string) string {
	return fmt.Sprintf("%s%s_%016x", KeyPrefix, nonce, xxh3.HashString(clientIP))
}
