package xid

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const suffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// New returns a prefixed random identifier such as "tx_5f0c...".
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// Suffix returns n random characters from an unambiguous uppercase alphabet.
func Suffix(n int) string {
	if n < 1 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fallbackSuffix(n)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(out)
}

// fallbackSuffix concatenates uuids until n characters are available.
func fallbackSuffix(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")))
	}
	return b.String()[:n]
}
