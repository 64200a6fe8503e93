// Package checksum computes the resource digest used by the note service to
// identify attachments.
package checksum

import (
	"crypto/md5" //nolint:gosec // EDAM identifies resources by MD5
	"encoding/hex"
)

// Sum returns the lowercase hex-encoded MD5 digest of data.
func Sum(data []byte) string {
	h := Raw(data)
	return hex.EncodeToString(h)
}

// Raw returns the 16-byte MD5 digest of data, as carried in Data.bodyHash.
func Raw(data []byte) []byte {
	h := md5.Sum(data) //nolint:gosec
	return h[:]
}
