// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package field implements arithmetic over the BN254 base field
//
//	p = 21888242871839275222246405745257275088696311157297823662689037894645226208583
//
// Elements are 4x64-bit little-endian limbs kept in Montgomery form. The
// Montgomery and canonical representations are distinct types (Element and
// Canonical) with explicit conversions, so the two domains cannot be mixed
// by accident.
package field

import "math/bits"

// Limbs is the number of 64-bit words in a field element.
const Limbs = 4

// Bytes is the canonical serialized size of a field element.
const Bytes = 32

// modulus p, little-endian limbs.
var qElement = [Limbs]uint64{
	0x3c208c16d87cfd47,
	0x97816a916871ca8d,
	0xb85045b68181585d,
	0x30644e72e131a029,
}

// p - 2, the Fermat inversion exponent.
var qMinusTwo = [Limbs]uint64{
	0x3c208c16d87cfd45,
	0x97816a916871ca8d,
	0xb85045b68181585d,
	0x30644e72e131a029,
}

// R = 2^256 mod p (one in Montgomery form).
var rElement = [Limbs]uint64{
	0xd35d438dc58f0d9d,
	0x0a78eb28f5c70b3d,
	0x666ea36f7879462c,
	0x0e0a77c19a07df2f,
}

// R^2 mod p, used to convert into Montgomery form.
var rSquare = [Limbs]uint64{
	0xf32cfc5b538afa89,
	0xb5e71911d44501fb,
	0x47ab1eff0a417ff6,
	0x06d89f71cab8351f,
}

// -p^-1 mod 2^64, the Montgomery reduction factor.
const qInvNeg = 0x87d20782e4866389

// Element is a field element in Montgomery form. The zero value is the field
// zero. Elements have value semantics and are copied, never aliased.
type Element [Limbs]uint64

// One returns the field one (R mod p).
func One() Element {
	return Element(rElement)
}

// add256 computes r = a + b and returns the carry out.
func add256(r, a, b *[Limbs]uint64) uint64 {
	var c uint64
	r[0], c = bits.Add64(a[0], b[0], 0)
	r[1], c = bits.Add64(a[1], b[1], c)
	r[2], c = bits.Add64(a[2], b[2], c)
	r[3], c = bits.Add64(a[3], b[3], c)
	return c
}

// sub256 computes r = a - b and returns the borrow out.
func sub256(r, a, b *[Limbs]uint64) uint64 {
	var bo uint64
	r[0], bo = bits.Sub64(a[0], b[0], 0)
	r[1], bo = bits.Sub64(a[1], b[1], bo)
	r[2], bo = bits.Sub64(a[2], b[2], bo)
	r[3], bo = bits.Sub64(a[3], b[3], bo)
	return bo
}

// select256 overwrites r with v where mask is all-ones, limb by limb.
func select256(r *[Limbs]uint64, v *[Limbs]uint64, mask uint64) {
	r[0] = (r[0] &^ mask) | (v[0] & mask)
	r[1] = (r[1] &^ mask) | (v[1] & mask)
	r[2] = (r[2] &^ mask) | (v[2] & mask)
	r[3] = (r[3] &^ mask) | (v[3] & mask)
}

// Add sets z = x + y mod p and returns z.
func (z *Element) Add(x, y *Element) *Element {
	var tmp [Limbs]uint64
	carry := add256((*[Limbs]uint64)(z), (*[Limbs]uint64)(x), (*[Limbs]uint64)(y))
	borrow := sub256(&tmp, (*[Limbs]uint64)(z), &qElement)
	// Reduce when the raw sum overflowed 256 bits or is >= p.
	useReduced := carry | (borrow ^ 1)
	mask := -(useReduced & 1)
	select256((*[Limbs]uint64)(z), &tmp, mask)
	return z
}

// Sub sets z = x - y mod p and returns z.
func (z *Element) Sub(x, y *Element) *Element {
	var tmp [Limbs]uint64
	borrow := sub256((*[Limbs]uint64)(z), (*[Limbs]uint64)(x), (*[Limbs]uint64)(y))
	add256(&tmp, (*[Limbs]uint64)(z), &qElement)
	mask := -(borrow & 1)
	select256((*[Limbs]uint64)(z), &tmp, mask)
	return z
}

// Neg sets z = -x mod p and returns z. Neg(0) = 0.
func (z *Element) Neg(x *Element) *Element {
	if x.IsZero() {
		z.SetZero()
		return z
	}
	sub256((*[Limbs]uint64)(z), &qElement, (*[Limbs]uint64)(x))
	return z
}

// mul256 computes the full 512-bit product t = a * b.
func mul256(t *[2 * Limbs]uint64, a, b *[Limbs]uint64) {
	for i := range t {
		t[i] = 0
	}
	for i := 0; i < Limbs; i++ {
		var carry uint64
		for j := 0; j < Limbs; j++ {
			hi, lo := bits.Mul64(a[i], b[j])
			var c uint64
			lo, c = bits.Add64(lo, t[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			t[i+j] = lo
			carry = hi
		}
		t[i+Limbs] = carry
	}
}

// montReduce folds the 512-bit value t into r = t * R^-1 mod p.
func montReduce(r *[Limbs]uint64, t *[2 * Limbs]uint64) {
	for i := 0; i < Limbs; i++ {
		k := t[i] * qInvNeg
		var carry uint64
		for j := 0; j < Limbs; j++ {
			hi, lo := bits.Mul64(k, qElement[j])
			var c uint64
			lo, c = bits.Add64(lo, t[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			t[i+j] = lo
			carry = hi
		}
		for j := i + Limbs; j < 2*Limbs && carry != 0; j++ {
			t[j], carry = bits.Add64(t[j], carry, 0)
		}
	}

	r[0], r[1], r[2], r[3] = t[4], t[5], t[6], t[7]

	var tmp [Limbs]uint64
	borrow := sub256(&tmp, r, &qElement)
	mask := borrow - 1 // all-ones when r >= p
	select256(r, &tmp, mask)
}

// Mul sets z = x * y mod p (Montgomery product) and returns z.
func (z *Element) Mul(x, y *Element) *Element {
	var t [2 * Limbs]uint64
	mul256(&t, (*[Limbs]uint64)(x), (*[Limbs]uint64)(y))
	montReduce((*[Limbs]uint64)(z), &t)
	return z
}

// Square sets z = x^2 mod p and returns z.
func (z *Element) Square(x *Element) *Element {
	return z.Mul(x, x)
}

// Exp sets z = x^e mod p for a little-endian limb exponent and returns z.
func (z *Element) Exp(x *Element, e *[Limbs]uint64) *Element {
	base := *x
	result := One()
	for i := 0; i < Limbs; i++ {
		w := e[i]
		for j := 0; j < 64; j++ {
			if w&1 == 1 {
				result.Mul(&result, &base)
			}
			base.Square(&base)
			w >>= 1
		}
	}
	*z = result
	return z
}

// Inverse sets z = x^-1 mod p via Fermat's little theorem and returns z.
//
// Inverting zero is a caller error: the result for a zero input is zero, not
// an inverse. Callers must check IsZero first.
func (z *Element) Inverse(x *Element) *Element {
	return z.Exp(x, &qMinusTwo)
}

// BatchInvert inverts every element of in using Montgomery's trick: one
// running product, a single inversion, and an unwind pass. The result slice
// is freshly allocated. No input may be zero.
func BatchInvert(in []Element) []Element {
	out := make([]Element, len(in))
	if len(in) == 0 {
		return out
	}
	if len(in) == 1 {
		out[0].Inverse(&in[0])
		return out
	}

	acc := make([]Element, len(in))
	acc[0] = in[0]
	for i := 1; i < len(in); i++ {
		acc[i].Mul(&acc[i-1], &in[i])
	}

	var invAll Element
	invAll.Inverse(&acc[len(in)-1])

	for i := len(in) - 1; i > 0; i-- {
		out[i].Mul(&invAll, &acc[i-1])
		invAll.Mul(&invAll, &in[i])
	}
	out[0] = invAll

	for i := range acc {
		acc[i].Zeroize()
	}
	return out
}

// BatchMul computes out[i] = a[i] * b[i] for matching-length slices.
func BatchMul(out, a, b []Element) {
	for i := range out {
		out[i].Mul(&a[i], &b[i])
	}
}

// Equal reports whether z and x hold the same limbs. Both operands must be
// in the same representation; the type system enforces that for Element vs
// Canonical values.
func (z *Element) Equal(x *Element) bool {
	diff := (z[0] ^ x[0]) | (z[1] ^ x[1]) | (z[2] ^ x[2]) | (z[3] ^ x[3])
	return diff == 0
}

// IsZero reports whether z is the field zero.
func (z *Element) IsZero() bool {
	return z[0]|z[1]|z[2]|z[3] == 0
}

// IsOne reports whether z is the field one.
func (z *Element) IsOne() bool {
	one := One()
	return z.Equal(&one)
}

// SetZero sets z to zero and returns z.
func (z *Element) SetZero() *Element {
	z[0], z[1], z[2], z[3] = 0, 0, 0, 0
	return z
}

// SetOne sets z to one (Montgomery R) and returns z.
func (z *Element) SetOne() *Element {
	copy(z[:], rElement[:])
	return z
}

// Set copies x into z and returns z.
func (z *Element) Set(x *Element) *Element {
	*z = *x
	return z
}

// Cmp compares the raw limb values of z and x in constant time, returning
// -1, 0, or 1. Both operands must share a representation.
func (z *Element) Cmp(x *Element) int {
	var gt, lt uint64
	for i := Limbs - 1; i >= 0; i-- {
		_, zGt := bits.Sub64(x[i], z[i], 0)
		_, xGt := bits.Sub64(z[i], x[i], 0)
		undecided := 1 &^ (gt | lt)
		gt |= undecided & zGt
		lt |= undecided & xGt
	}
	return int(gt) - int(lt)
}

// Zeroize clears z. Used to scrub secret intermediates.
func (z *Element) Zeroize() {
	z[0], z[1], z[2], z[3] = 0, 0, 0, 0
}
