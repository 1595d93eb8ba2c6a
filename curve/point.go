// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package curve implements BN254 G1 group arithmetic in Jacobian
// coordinates, a 64-byte affine wire codec, and a windowed multi-scalar
// multiplication. Pairing evaluation is delegated to the bn256 package; see
// pairing.go.
package curve

import (
	"errors"

	"github.com/tetsuo-ai/tetsuo-go/field"
)

// EncodedSize is the serialized size of an affine G1 point: x then y, each
// 32 bytes big-endian. The all-zero encoding is the point at infinity.
const EncodedSize = 2 * field.Bytes

var (
	// ErrPointLength is returned when a serialized point is not 64 bytes.
	ErrPointLength = errors.New("curve: serialized G1 point must be 64 bytes")

	// ErrNotOnCurve is returned when a decoded point fails the curve equation.
	ErrNotOnCurve = errors.New("curve: point not on curve")
)

// curveB is the constant term of y^2 = x^3 + 3, in Montgomery form.
var curveB = func() field.Element {
	c := field.FromUint64(3)
	return c.ToMont()
}()

// Point is a G1 point in Jacobian coordinates (X/Z^2, Y/Z^3). Z == 0 marks
// the point at infinity.
type Point struct {
	X, Y, Z field.Element
}

// Infinity returns the group identity.
func Infinity() Point {
	var p Point
	p.Y.SetOne()
	return p
}

// Generator returns the G1 generator (1, 2).
func Generator() Point {
	var p Point
	x := field.FromUint64(1)
	y := field.FromUint64(2)
	p.X = x.ToMont()
	p.Y = y.ToMont()
	p.Z.SetOne()
	return p
}

// IsInfinity reports whether p is the group identity.
func (p *Point) IsInfinity() bool {
	return p.Z.IsZero()
}

// SetInfinity sets p to the group identity and returns p.
func (p *Point) SetInfinity() *Point {
	p.X.SetZero()
	p.Y.SetOne()
	p.Z.SetZero()
	return p
}

// Set copies q into p and returns p.
func (p *Point) Set(q *Point) *Point {
	*p = *q
	return p
}

// Double sets p = 2q and returns p. Uses the dbl-2009-l Jacobian doubling
// formula.
func (p *Point) Double(q *Point) *Point {
	if q.IsInfinity() {
		return p.Set(q)
	}

	var a, b, c, d, e, f, t, t2 field.Element
	a.Square(&q.X)           // A = X^2
	b.Square(&q.Y)           // B = Y^2
	c.Square(&b)             // C = B^2
	t.Add(&q.X, &b)          // D = 2*((X+B)^2 - A - C)
	t.Square(&t)
	t.Sub(&t, &a)
	t.Sub(&t, &c)
	d.Add(&t, &t)
	e.Add(&a, &a)            // E = 3*A
	e.Add(&e, &a)
	f.Square(&e)             // F = E^2

	var x3, y3, z3 field.Element
	x3.Sub(&f, &d)           // X3 = F - 2*D
	x3.Sub(&x3, &d)
	t.Sub(&d, &x3)           // Y3 = E*(D - X3) - 8*C
	y3.Mul(&e, &t)
	t2.Add(&c, &c)
	t2.Add(&t2, &t2)
	t2.Add(&t2, &t2)
	y3.Sub(&y3, &t2)
	z3.Mul(&q.Y, &q.Z)       // Z3 = 2*Y*Z
	z3.Add(&z3, &z3)

	p.X, p.Y, p.Z = x3, y3, z3
	return p
}

// Add sets p = a + b and returns p. Uses the add-2007-bl Jacobian addition
// formula, falling back to Double for equal inputs. Operands may alias the
// receiver.
func (p *Point) Add(a, b *Point) *Point {
	if a.IsInfinity() {
		return p.Set(b)
	}
	if b.IsInfinity() {
		return p.Set(a)
	}

	var z1z1, z2z2, u1, u2, s1, s2, h, r, t field.Element
	z1z1.Square(&a.Z)
	z2z2.Square(&b.Z)
	u1.Mul(&a.X, &z2z2)
	u2.Mul(&b.X, &z1z1)
	t.Mul(&b.Z, &z2z2)
	s1.Mul(&a.Y, &t)
	t.Mul(&a.Z, &z1z1)
	s2.Mul(&b.Y, &t)
	h.Sub(&u2, &u1)
	r.Sub(&s2, &s1)
	r.Add(&r, &r)

	if h.IsZero() && r.IsZero() {
		return p.Double(a)
	}

	var i, j, v, x3, y3, z3 field.Element
	i.Add(&h, &h)            // I = (2*H)^2
	i.Square(&i)
	j.Mul(&h, &i)            // J = H*I
	v.Mul(&u1, &i)           // V = U1*I

	x3.Square(&r)            // X3 = r^2 - J - 2*V
	x3.Sub(&x3, &j)
	x3.Sub(&x3, &v)
	x3.Sub(&x3, &v)

	t.Sub(&v, &x3)           // Y3 = r*(V - X3) - 2*S1*J
	y3.Mul(&r, &t)
	t.Mul(&s1, &j)
	t.Add(&t, &t)
	y3.Sub(&y3, &t)

	z3.Add(&a.Z, &b.Z)       // Z3 = ((Z1+Z2)^2 - Z1Z1 - Z2Z2)*H
	z3.Square(&z3)
	z3.Sub(&z3, &z1z1)
	z3.Sub(&z3, &z2z2)
	z3.Mul(&z3, &h)

	p.X, p.Y, p.Z = x3, y3, z3
	return p
}

// Neg sets p = -q (the y-coordinate negated) and returns p.
func (p *Point) Neg(q *Point) *Point {
	p.X = q.X
	p.Y.Neg(&q.Y)
	p.Z = q.Z
	return p
}

// cswap exchanges a and b when bit is 1, via masked limb swaps. No secret
// dependent branches.
func cswap(a, b *Point, bit uint64) {
	mask := -bit
	for i := 0; i < field.Limbs; i++ {
		d := (a.X[i] ^ b.X[i]) & mask
		a.X[i] ^= d
		b.X[i] ^= d
		d = (a.Y[i] ^ b.Y[i]) & mask
		a.Y[i] ^= d
		b.Y[i] ^= d
		d = (a.Z[i] ^ b.Z[i]) & mask
		a.Z[i] ^= d
		b.Z[i] ^= d
	}
}

// ScalarMul sets p = k*q using a Montgomery ladder with masked swaps, so the
// sequence of group operations does not depend on the scalar bits. The
// scalar is read as a 256-bit little-endian integer.
func (p *Point) ScalarMul(q *Point, k *field.Canonical) *Point {
	r0 := Infinity()
	r1 := *q
	for i := 255; i >= 0; i-- {
		bit := k.Bit(i)
		cswap(&r0, &r1, bit)
		r1.Add(&r0, &r1)
		r0.Double(&r0)
		cswap(&r0, &r1, bit)
	}
	*p = r0
	return p
}

// IsOnCurve reports whether p satisfies the Jacobian curve equation
// Y^2 = X^3 + 3*Z^6. The identity is on the curve.
func (p *Point) IsOnCurve() bool {
	if p.IsInfinity() {
		return true
	}
	var lhs, rhs, z2, z6 field.Element
	lhs.Square(&p.Y)
	rhs.Square(&p.X)
	rhs.Mul(&rhs, &p.X)
	z2.Square(&p.Z)
	z6.Square(&z2)
	z6.Mul(&z6, &z2)
	z6.Mul(&z6, &curveB)
	rhs.Add(&rhs, &z6)
	return lhs.Equal(&rhs)
}

// Equal reports whether p and q are the same group element, comparing
// cross-multiplied Jacobian coordinates.
func (p *Point) Equal(q *Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	var z1z1, z2z2, l, r field.Element
	z1z1.Square(&p.Z)
	z2z2.Square(&q.Z)
	l.Mul(&p.X, &z2z2)
	r.Mul(&q.X, &z1z1)
	if !l.Equal(&r) {
		return false
	}
	var z1z1z1, z2z2z2 field.Element
	z1z1z1.Mul(&z1z1, &p.Z)
	z2z2z2.Mul(&z2z2, &q.Z)
	l.Mul(&p.Y, &z2z2z2)
	r.Mul(&q.Y, &z1z1z1)
	return l.Equal(&r)
}

// Affine returns the affine coordinates of p. The second return is false
// for the point at infinity.
func (p *Point) Affine() (x, y field.Element, ok bool) {
	if p.IsInfinity() {
		return x, y, false
	}
	var zinv, zinv2, zinv3 field.Element
	zinv.Inverse(&p.Z)
	zinv2.Square(&zinv)
	zinv3.Mul(&zinv2, &zinv)
	x.Mul(&p.X, &zinv2)
	y.Mul(&p.Y, &zinv3)
	return x, y, true
}

// Encode serializes p as 64 bytes of affine big-endian coordinates. The
// identity encodes as all zeros.
func (p *Point) Encode() [EncodedSize]byte {
	var out [EncodedSize]byte
	x, y, ok := p.Affine()
	if !ok {
		return out
	}
	xb := x.Bytes()
	yb := y.Bytes()
	copy(out[:field.Bytes], xb[:])
	copy(out[field.Bytes:], yb[:])
	return out
}

// Decode parses a 64-byte affine encoding, validating field membership and
// the curve equation. All zeros decodes to the identity.
func Decode(b []byte) (Point, error) {
	if len(b) != EncodedSize {
		return Point{}, ErrPointLength
	}
	zero := true
	for _, v := range b {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		return Infinity(), nil
	}

	var p Point
	var err error
	p.X, err = field.FromBytes(b[:field.Bytes])
	if err != nil {
		return Point{}, err
	}
	p.Y, err = field.FromBytes(b[field.Bytes:])
	if err != nil {
		return Point{}, err
	}
	p.Z.SetOne()
	if !p.IsOnCurve() {
		return Point{}, ErrNotOnCurve
	}
	return p, nil
}
