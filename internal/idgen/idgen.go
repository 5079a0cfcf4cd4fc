// Package idgen generates and resolves Kaban's global task ids: 26-char,
// base32-encoded, lexicographically sortable by creation time (a ULID
// shape), prefix-searchable down to 4 characters.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"

	"github.com/google/uuid"
)

// base32Alphabet is Crockford's base32: no I, L, O, U, to avoid visual
// ambiguity and accidental profanity in generated ids.
const base32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Length is the fixed length of a global task id: 10 chars of
// millisecond timestamp + 16 chars of randomness, both base32-encoded.
const Length = 26

// New generates a fresh global id whose first 10 characters sort by
// creation time and whose last 16 are random entropy (seeded from a
// uuid.v4 plus a crypto/rand fallback so entropy never depends solely on
// one source being wired).
func New() string {
	return NewAt(time.Now())
}

// NewAt generates a global id stamped with the given time, for
// deterministic tests.
func NewAt(t time.Time) string {
	var buf [16]byte
	ms := uint64(t.UnixMilli())

	var ts [10]byte
	encodeTimestamp(ms, ts[:])

	entropy := randomEntropy()
	copy(buf[:], entropy)

	var sb strings.Builder
	sb.Grow(Length)
	sb.Write(ts[:])
	sb.WriteString(encodeEntropy(buf))
	return sb.String()
}

func randomEntropy() []byte {
	// uuid.NewRandom draws from crypto/rand internally; used here purely
	// as the entropy source so a real dependency backs the randomness
	// rather than a hand-rolled reader.
	if id, err := uuid.NewRandom(); err == nil {
		b := id[:]
		return b
	}
	var b [16]byte
	_, _ = rand.Read(b[:])
	return b[:]
}

// encodeTimestamp writes the 48-bit millisecond timestamp as 10 base32
// characters into dst (ULID's timestamp encoding).
func encodeTimestamp(ms uint64, dst []byte) {
	var tb [8]byte
	binary.BigEndian.PutUint64(tb[:], ms)
	// ms fits in 48 bits; tb[2:8] holds the significant bytes.
	ts := tb[2:8]

	dst[0] = base32Alphabet[(ts[0]&224)>>5]
	dst[1] = base32Alphabet[ts[0]&31]
	dst[2] = base32Alphabet[(ts[1]&248)>>3]
	dst[3] = base32Alphabet[((ts[1]&7)<<2)|((ts[2]&192)>>6)]
	dst[4] = base32Alphabet[(ts[2]&62)>>1]
	dst[5] = base32Alphabet[((ts[2]&1)<<4)|((ts[3]&240)>>4)]
	dst[6] = base32Alphabet[((ts[3]&15)<<1)|((ts[4]&128)>>7)]
	dst[7] = base32Alphabet[(ts[4]&124)>>2]
	dst[8] = base32Alphabet[((ts[4]&3)<<3)|((ts[5]&224)>>5)]
	dst[9] = base32Alphabet[ts[5]&31]
}

// encodeEntropy base32-encodes the first 10 of the 16 random bytes into
// 16 characters (80 bits in, 80 bits out, 5 bits/char); the last 6
// bytes are unused.
func encodeEntropy(b [16]byte) string {
	var out [16]byte
	out[0] = base32Alphabet[(b[0]&248)>>3]
	out[1] = base32Alphabet[((b[0]&7)<<2)|((b[1]&192)>>6)]
	out[2] = base32Alphabet[(b[1]&62)>>1]
	out[3] = base32Alphabet[((b[1]&1)<<4)|((b[2]&240)>>4)]
	out[4] = base32Alphabet[((b[2]&15)<<1)|((b[3]&128)>>7)]
	out[5] = base32Alphabet[(b[3]&124)>>2]
	out[6] = base32Alphabet[((b[3]&3)<<3)|((b[4]&224)>>5)]
	out[7] = base32Alphabet[b[4]&31]
	out[8] = base32Alphabet[(b[5]&248)>>3]
	out[9] = base32Alphabet[((b[5]&7)<<2)|((b[6]&192)>>6)]
	out[10] = base32Alphabet[(b[6]&62)>>1]
	out[11] = base32Alphabet[((b[6]&1)<<4)|((b[7]&240)>>4)]
	out[12] = base32Alphabet[((b[7]&15)<<1)|((b[8]&128)>>7)]
	out[13] = base32Alphabet[(b[8]&124)>>2]
	out[14] = base32Alphabet[((b[8]&3)<<3)|((b[9]&224)>>5)]
	out[15] = base32Alphabet[b[9]&31]
	return string(out[:])
}

// IsValid reports whether s has the shape of a full global id: 26
// characters, all drawn from the base32 alphabet.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	return isBase32(s)
}

// IsBase32Prefix reports whether s is a non-empty string drawn entirely
// from the base32 alphabet, regardless of length — used to recognise a
// candidate id prefix (§4.3 resolution algorithm requires >=4 chars,
// checked by the caller).
func IsBase32Prefix(s string) bool {
	return s != "" && isBase32(s)
}

func isBase32(s string) bool {
	for _, r := range s {
		if strings.IndexRune(base32Alphabet, upperRune(r)) < 0 {
			return false
		}
	}
	return true
}

func upperRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
