package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 26-character Crockford Base32 strings with a 48-bit
// millisecond timestamp prefix and 80 random bits, so IDs sort by creation
// time. Generated locally to avoid an external dependency for one function.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func newJobID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	// Sequence in bytes 6-7 keeps IDs unique within the same millisecond.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeBase32(b)
}

// encodeBase32 packs 128 bits into 26 Crockford Base32 characters, reading
// the byte array as a big-endian bit stream (the top two bits of the first
// character are zero-padded).
func encodeBase32(b [16]byte) string {
	out := make([]byte, 26)
	// Total 130 bit positions; start at -2 so the 128 data bits end flush.
	bitPos := -2
	for i := 0; i < 26; i++ {
		var v uint
		for j := 0; j < 5; j++ {
			v <<= 1
			pos := bitPos + j
			if pos < 0 || pos >= 128 {
				continue
			}
			if b[pos/8]&(1<<(7-uint(pos%8))) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
		bitPos += 5
	}
	return string(out)
}
