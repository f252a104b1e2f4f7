// Package xid generates prefixed unique ids for storefront records.
// Prefixes identify the record kind: "hho" for orders, "prod" for
// products, "user", "refund", and "inv"/"med"/"egg" for farm records.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns an id of the form <prefix>-<unixnano>-<8 random bytes hex>.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
