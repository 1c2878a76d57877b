// Package digest is a self-contained SHA-256 (FIPS 180-4) implementation
// used as the content-identity fingerprint for duplicate detection.
package digest

import (
	"encoding/binary"
	"encoding/hex"
)

const (
	// Size is the length of a digest in bytes.
	Size = 32
	// BlockSize is the compression function's input block size in bytes.
	BlockSize = 64
)

// Sum is a 256-bit digest.
type Sum [Size]byte

// String returns the lowercase hex encoding of s.
func (s Sum) String() string {
	return hex.EncodeToString(s[:])
}

// Digest is a streaming SHA-256 state. The zero value is not usable; call New.
//
// Write may be called any number of times with chunks of any length.
// Sum256 finalizes the state and may be called once; after that the Digest
// is spent until Reset.
type Digest struct {
	h      [8]uint32
	buf    [BlockSize]byte
	nbuf   int
	length uint64 // message length in bytes
	spent  bool
}

// New returns a Digest initialized to the published initial state.
func New() *Digest {
	d := &Digest{}
	d.Reset()
	return d
}

// Reset restores the initial state, reviving a spent Digest.
func (d *Digest) Reset() {
	d.h = iv
	d.buf = [BlockSize]byte{}
	d.nbuf = 0
	d.length = 0
	d.spent = false
}

// Size returns the digest length in bytes.
func (*Digest) Size() int { return Size }

// BlockSize returns the hash's block size in bytes.
func (*Digest) BlockSize() int { return BlockSize }

// Write absorbs p into the running state. It never returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	if d.spent {
		panic("digest: Write after Sum256")
	}
	n := len(p)
	d.length += uint64(n)

	if d.nbuf > 0 {
		c := copy(d.buf[d.nbuf:], p)
		d.nbuf += c
		p = p[c:]
		if d.nbuf < BlockSize {
			return n, nil
		}
		block(&d.h, d.buf[:])
		d.nbuf = 0
	}

	for len(p) >= BlockSize {
		block(&d.h, p[:BlockSize])
		p = p[BlockSize:]
	}

	if len(p) > 0 {
		d.nbuf = copy(d.buf[:], p)
	}
	return n, nil
}

// Sum256 pads the buffered remainder, compresses the final block(s) and
// returns the digest. The Digest is spent afterwards.
func (d *Digest) Sum256() Sum {
	if d.spent {
		panic("digest: Sum256 called twice")
	}
	d.spent = true

	bitLen := d.length << 3

	d.buf[d.nbuf] = 0x80
	clear(d.buf[d.nbuf+1:])

	// The length field needs the last 8 bytes of a block. If the terminator
	// left fewer than that, this block is flushed and a zero block follows.
	if d.nbuf+1 > BlockSize-8 {
		block(&d.h, d.buf[:])
		clear(d.buf[:])
	}

	binary.BigEndian.PutUint64(d.buf[BlockSize-8:], bitLen)
	block(&d.h, d.buf[:])
	d.nbuf = 0

	var out Sum
	for i, w := range d.h {
		binary.BigEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// Sum appends the digest of the data written so far to b. Unlike Sum256 it
// finalizes a copy, so d can keep absorbing input, as hash.Hash requires.
func (d *Digest) Sum(b []byte) []byte {
	dup := *d
	s := dup.Sum256()
	return append(b, s[:]...)
}

// Sum256 returns the digest of data.
func Sum256(data []byte) Sum {
	d := New()
	_, _ = d.Write(data) //nolint:errcheck // Write never fails
	return d.Sum256()
}
