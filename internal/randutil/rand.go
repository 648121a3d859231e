// Package randutil provides reproducible random byte streams. Production
// shuffles always read from crypto/rand; these streams exist so that tests
// and replays can reproduce an exact deck order.
package randutil

import (
	"encoding/binary"
	"io"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// NewReader returns an io.Reader producing a deterministic byte stream
// derived from seed. Two readers with the same seed yield identical bytes.
func NewReader(seed int64) io.Reader {
	var key [32]byte
	u := uint64(seed)
	for i := range 4 {
		binary.LittleEndian.PutUint64(key[i*8:], mix(u+uint64(i)*goldenRatio64))
	}
	return rand.NewChaCha8(key)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
