// Package daily picks the shared seed word for the daily challenge and
// keeps one result per player per date.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SeedIndex maps the UTC day of date onto [0, n). Every server sharing salt
// picks the same position for a day; without the salt the sequence cannot
// be predicted from the date alone.
func SeedIndex(date time.Time, salt string, n int) int {
	if n <= 1 {
		return 0
	}
	mac := hmac.New(sha256.New, []byte(salt))
	_, _ = io.WriteString(mac, DateKey(date))
	var sum [sha256.Size]byte
	return int(binary.BigEndian.Uint64(mac.Sum(sum[:0])) % uint64(n))
}
