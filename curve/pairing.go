// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"errors"

	"github.com/luxfi/crypto/bn256"
)

// G2EncodedSize is the serialized size of an affine G2 point: the x then y
// Fp2 coordinates, each as imaginary part then real part, 32 bytes apiece.
// This matches the EVM precompile layout.
const G2EncodedSize = 128

// ErrG2PointLength is returned when a serialized G2 point is not 128 bytes.
var ErrG2PointLength = errors.New("curve: serialized G2 point must be 128 bytes")

// DecodeG2 parses a 128-byte affine G2 encoding. Subgroup and curve
// membership are validated by the underlying unmarshal. All zeros decodes
// to the G2 identity.
func DecodeG2(b []byte) (*bn256.G2, error) {
	if len(b) != G2EncodedSize {
		return nil, ErrG2PointLength
	}
	p := new(bn256.G2)
	if _, err := p.Unmarshal(b); err != nil {
		return nil, err
	}
	return p, nil
}

// toBN256 converts a native point into the pairing engine's representation.
func toBN256(p *Point) (*bn256.G1, error) {
	enc := p.Encode()
	g := new(bn256.G1)
	if _, err := g.Unmarshal(enc[:]); err != nil {
		return nil, err
	}
	return g, nil
}

// PairingCheck reports whether the product of pairings over the given pairs
// is the identity: prod e(g1[i], g2[i]) == 1. The slices must have equal
// length; an empty product checks true.
func PairingCheck(g1 []Point, g2 []*bn256.G2) (bool, error) {
	if len(g1) != len(g2) {
		return false, errors.New("curve: pairing input length mismatch")
	}
	as := make([]*bn256.G1, len(g1))
	for i := range g1 {
		a, err := toBN256(&g1[i])
		if err != nil {
			return false, err
		}
		as[i] = a
	}
	return bn256.PairingCheck(as, g2), nil
}
