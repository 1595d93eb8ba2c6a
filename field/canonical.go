// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

import (
	"errors"
	"math/bits"
)

var (
	// ErrBytesLength is returned when a serialized element is not 32 bytes.
	ErrBytesLength = errors.New("field: serialized element must be 32 bytes")

	// ErrNotCanonical is returned when a serialized element is >= p.
	ErrNotCanonical = errors.New("field: serialized element not below modulus")
)

// Canonical is a field element in plain (non-Montgomery) representation,
// 4x64-bit little-endian limbs. It is also the scalar type for curve
// multiplications, where the limbs are read as a 256-bit integer.
type Canonical [Limbs]uint64

// FromUint64 returns v as a canonical element.
func FromUint64(v uint64) Canonical {
	return Canonical{v, 0, 0, 0}
}

// ToMont converts c into Montgomery form.
func (c *Canonical) ToMont() Element {
	var z Element
	var t [2 * Limbs]uint64
	mul256(&t, (*[Limbs]uint64)(c), &rSquare)
	montReduce((*[Limbs]uint64)(&z), &t)
	return z
}

// ToCanonical converts z out of Montgomery form.
func (z *Element) ToCanonical() Canonical {
	var c Canonical
	var t [2 * Limbs]uint64
	t[0], t[1], t[2], t[3] = z[0], z[1], z[2], z[3]
	montReduce((*[Limbs]uint64)(&c), &t)
	return c
}

// IsZero reports whether c is zero.
func (c *Canonical) IsZero() bool {
	return c[0]|c[1]|c[2]|c[3] == 0
}

// Bit returns bit i of c, counting from the least significant bit.
func (c *Canonical) Bit(i int) uint64 {
	return (c[i/64] >> (uint(i) % 64)) & 1
}

// BitLen returns the minimal bit length of c.
func (c *Canonical) BitLen() int {
	for i := Limbs - 1; i >= 0; i-- {
		if c[i] != 0 {
			return i*64 + 64 - bits.LeadingZeros64(c[i])
		}
	}
	return 0
}

// SetBytes decodes a 32-byte big-endian value. The value must be strictly
// below the modulus.
func (c *Canonical) SetBytes(b []byte) error {
	if len(b) != Bytes {
		return ErrBytesLength
	}
	for i := 0; i < Limbs; i++ {
		c[Limbs-1-i] = uint64(b[i*8])<<56 | uint64(b[i*8+1])<<48 |
			uint64(b[i*8+2])<<40 | uint64(b[i*8+3])<<32 |
			uint64(b[i*8+4])<<24 | uint64(b[i*8+5])<<16 |
			uint64(b[i*8+6])<<8 | uint64(b[i*8+7])
	}
	var tmp [Limbs]uint64
	if sub256(&tmp, (*[Limbs]uint64)(c), &qElement) == 0 {
		*c = Canonical{}
		return ErrNotCanonical
	}
	return nil
}

// Bytes returns the 32-byte big-endian encoding of c.
func (c *Canonical) Bytes() [Bytes]byte {
	var out [Bytes]byte
	for i := 0; i < Limbs; i++ {
		limb := c[Limbs-1-i]
		out[i*8] = byte(limb >> 56)
		out[i*8+1] = byte(limb >> 48)
		out[i*8+2] = byte(limb >> 40)
		out[i*8+3] = byte(limb >> 32)
		out[i*8+4] = byte(limb >> 24)
		out[i*8+5] = byte(limb >> 16)
		out[i*8+6] = byte(limb >> 8)
		out[i*8+7] = byte(limb)
	}
	return out
}

// FromBytes decodes a canonical 32-byte big-endian value straight into
// Montgomery form.
func FromBytes(b []byte) (Element, error) {
	var c Canonical
	if err := c.SetBytes(b); err != nil {
		return Element{}, err
	}
	return c.ToMont(), nil
}

// Bytes returns the canonical 32-byte big-endian encoding of z.
func (z *Element) Bytes() [Bytes]byte {
	c := z.ToCanonical()
	return c.Bytes()
}

// ModulusBytes returns the 32-byte big-endian encoding of the field modulus.
func ModulusBytes() [Bytes]byte {
	p := Canonical(qElement)
	return p.Bytes()
}
