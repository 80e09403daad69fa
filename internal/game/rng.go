package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"
)

// NewSeed returns a high-entropy seed for the shuffle RNG, falling back to
// the clock if crypto/rand is unavailable.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
