// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/stretchr/testify/require"
)

// randomPair returns the same random field value in both this package's
// representation and the gnark-crypto reference representation.
func randomPair(t *testing.T) (Element, fp.Element) {
	t.Helper()
	var ref fp.Element
	_, err := ref.SetRandom()
	require.NoError(t, err)
	b := ref.Bytes()
	z, err := FromBytes(b[:])
	require.NoError(t, err)
	return z, ref
}

func TestAddSubIdentities(t *testing.T) {
	a, _ := randomPair(t)
	var zero Element

	var r Element
	r.Add(&a, &zero)
	require.True(t, r.Equal(&a), "a + 0 must equal a")

	var negA Element
	negA.Neg(&a)
	r.Add(&a, &negA)
	require.True(t, r.IsZero(), "a + (-a) must be zero")

	r.Sub(&a, &a)
	require.True(t, r.IsZero(), "a - a must be zero")
}

func TestMulIdentities(t *testing.T) {
	a, _ := randomPair(t)
	one := One()
	var zero Element

	var r Element
	r.Mul(&a, &one)
	require.True(t, r.Equal(&a), "a * 1 must equal a")

	r.Mul(&a, &zero)
	require.True(t, r.IsZero(), "a * 0 must be zero")

	var sq, mul Element
	sq.Square(&a)
	mul.Mul(&a, &a)
	require.True(t, sq.Equal(&mul), "square must match self-multiplication")
}

func TestMulCommutesAndDistributes(t *testing.T) {
	a, _ := randomPair(t)
	b, _ := randomPair(t)
	c, _ := randomPair(t)

	var ab, ba Element
	ab.Mul(&a, &b)
	ba.Mul(&b, &a)
	require.True(t, ab.Equal(&ba))

	// a*(b+c) == a*b + a*c
	var bc, lhs, ac, rhs Element
	bc.Add(&b, &c)
	lhs.Mul(&a, &bc)
	ac.Mul(&a, &c)
	rhs.Add(&ab, &ac)
	require.True(t, lhs.Equal(&rhs))
}

func TestInverse(t *testing.T) {
	for i := 0; i < 16; i++ {
		a, _ := randomPair(t)
		if a.IsZero() {
			continue
		}
		var inv, prod Element
		inv.Inverse(&a)
		prod.Mul(&a, &inv)
		require.True(t, prod.IsOne(), "a * a^-1 must be one")
	}
}

func TestBatchInvert(t *testing.T) {
	in := make([]Element, 17)
	for i := range in {
		in[i], _ = randomPair(t)
		if in[i].IsZero() {
			in[i].SetOne()
		}
	}
	out := BatchInvert(in)
	require.Len(t, out, len(in))
	for i := range in {
		var want Element
		want.Inverse(&in[i])
		require.True(t, out[i].Equal(&want), "batch inverse mismatch at %d", i)
	}

	require.Empty(t, BatchInvert(nil))
}

func TestDifferentialAgainstGnark(t *testing.T) {
	for i := 0; i < 64; i++ {
		a, refA := randomPair(t)
		b, refB := randomPair(t)

		var sum Element
		sum.Add(&a, &b)
		var refSum fp.Element
		refSum.Add(&refA, &refB)
		require.Equal(t, refSum.Bytes(), sum.Bytes(), "add mismatch")

		var diff Element
		diff.Sub(&a, &b)
		var refDiff fp.Element
		refDiff.Sub(&refA, &refB)
		require.Equal(t, refDiff.Bytes(), diff.Bytes(), "sub mismatch")

		var prod Element
		prod.Mul(&a, &b)
		var refProd fp.Element
		refProd.Mul(&refA, &refB)
		require.Equal(t, refProd.Bytes(), prod.Bytes(), "mul mismatch")

		if !a.IsZero() {
			var inv Element
			inv.Inverse(&a)
			var refInv fp.Element
			refInv.Inverse(&refA)
			require.Equal(t, refInv.Bytes(), inv.Bytes(), "inverse mismatch")
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a, ref := randomPair(t)
	got := a.Bytes()
	require.Equal(t, ref.Bytes(), got)

	back, err := FromBytes(got[:])
	require.NoError(t, err)
	require.True(t, back.Equal(&a))
}

func TestSetBytesRejectsNonCanonical(t *testing.T) {
	var c Canonical
	require.ErrorIs(t, c.SetBytes(make([]byte, 16)), ErrBytesLength)

	p := ModulusBytes()
	require.ErrorIs(t, c.SetBytes(p[:]), ErrNotCanonical)

	// p - 1 is the largest canonical value.
	pm1 := p
	pm1[31]--
	require.NoError(t, c.SetBytes(pm1[:]))

	ff := make([]byte, Bytes)
	for i := range ff {
		ff[i] = 0xff
	}
	require.ErrorIs(t, c.SetBytes(ff), ErrNotCanonical)
}

func TestMontgomeryRoundTrip(t *testing.T) {
	c := FromUint64(12345)
	m := c.ToMont()
	back := m.ToCanonical()
	require.Equal(t, c, back)

	// One in Montgomery form is R mod p, not 1.
	oneC := FromUint64(1)
	one := oneC.ToMont()
	require.True(t, one.IsOne())
	require.NotEqual(t, Element{1, 0, 0, 0}, one)
}

func TestNegZero(t *testing.T) {
	var zero, r Element
	r.Neg(&zero)
	require.True(t, r.IsZero())
}

func TestCmp(t *testing.T) {
	fiveC := FromUint64(5)
	a := fiveC.ToMont()
	b := fiveC.ToMont()
	require.Equal(t, 0, a.Cmp(&b))

	// Compare canonical values through the Montgomery domain is meaningless;
	// compare raw limbs of distinct values only for equality ordering.
	sixC := FromUint64(6)
	c := sixC.ToMont()
	require.NotEqual(t, 0, a.Cmp(&c))
	require.Equal(t, -c.Cmp(&a), a.Cmp(&c))
}

func TestBitLen(t *testing.T) {
	c := FromUint64(0)
	require.Equal(t, 0, c.BitLen())
	c = FromUint64(1)
	require.Equal(t, 1, c.BitLen())
	c = Canonical{0, 0, 0, 1}
	require.Equal(t, 193, c.BitLen())
	require.Equal(t, uint64(1), c.Bit(192))
	require.Equal(t, uint64(0), c.Bit(191))
}
