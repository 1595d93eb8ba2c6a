// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/bn256"

	"github.com/tetsuo-ai/tetsuo-go/curve"
)

// Verification key layout: alpha(64, G1) beta(128, G2) gamma(128, G2)
// delta(128, G2), then 2..MaxExtraInputs+2 IC points of 64 bytes each.
const (
	vkFixedSize = curve.EncodedSize + 3*curve.G2EncodedSize

	// MinICPoints is IC[0] plus one point for the primary public input.
	MinICPoints = 2

	// MaxICPoints bounds the key to the wire format's input capacity.
	MaxICPoints = MaxExtraInputs + 2
)

var (
	// ErrBadKeyLength is returned when key bytes are not the fixed header
	// plus a whole number of IC points.
	ErrBadKeyLength = errors.New("verify: malformed verification key length")

	// ErrBadICCount is returned when the IC table is outside [2, 18].
	ErrBadICCount = errors.New("verify: verification key IC count out of range")
)

// VerifyingKey is a parsed Groth16 verification key. All points are
// validated at parse time; the struct is read-only afterwards and safe for
// concurrent use.
type VerifyingKey struct {
	Alpha curve.Point
	Beta  *bn256.G2
	Gamma *bn256.G2
	Delta *bn256.G2
	IC    []curve.Point
}

// ParseVerifyingKey decodes verification key bytes, validating every point.
func ParseVerifyingKey(b []byte) (*VerifyingKey, error) {
	if len(b) < vkFixedSize || (len(b)-vkFixedSize)%curve.EncodedSize != 0 {
		return nil, ErrBadKeyLength
	}
	n := (len(b) - vkFixedSize) / curve.EncodedSize
	if n < MinICPoints || n > MaxICPoints {
		return nil, ErrBadICCount
	}

	vk := &VerifyingKey{}
	var err error
	off := 0
	vk.Alpha, err = curve.Decode(b[off : off+curve.EncodedSize])
	if err != nil {
		return nil, fmt.Errorf("vk alpha: %w", err)
	}
	off += curve.EncodedSize
	vk.Beta, err = curve.DecodeG2(b[off : off+curve.G2EncodedSize])
	if err != nil {
		return nil, fmt.Errorf("vk beta: %w", err)
	}
	off += curve.G2EncodedSize
	vk.Gamma, err = curve.DecodeG2(b[off : off+curve.G2EncodedSize])
	if err != nil {
		return nil, fmt.Errorf("vk gamma: %w", err)
	}
	off += curve.G2EncodedSize
	vk.Delta, err = curve.DecodeG2(b[off : off+curve.G2EncodedSize])
	if err != nil {
		return nil, fmt.Errorf("vk delta: %w", err)
	}
	off += curve.G2EncodedSize

	vk.IC = make([]curve.Point, n)
	for i := 0; i < n; i++ {
		vk.IC[i], err = curve.Decode(b[off : off+curve.EncodedSize])
		if err != nil {
			return nil, fmt.Errorf("vk ic[%d]: %w", i, err)
		}
		off += curve.EncodedSize
	}
	return vk, nil
}

// EncodeVerifyingKey serializes a key back to the wire layout. Used by
// tooling and tests; ParseVerifyingKey(EncodeVerifyingKey(vk)) is identity
// for valid keys.
func EncodeVerifyingKey(vk *VerifyingKey) []byte {
	out := make([]byte, 0, vkFixedSize+len(vk.IC)*curve.EncodedSize)
	a := vk.Alpha.Encode()
	out = append(out, a[:]...)
	out = append(out, vk.Beta.Marshal()...)
	out = append(out, vk.Gamma.Marshal()...)
	out = append(out, vk.Delta.Marshal()...)
	for i := range vk.IC {
		p := vk.IC[i].Encode()
		out = append(out, p[:]...)
	}
	return out
}

// extraInputCount returns how many wire public inputs the key expects
// beyond the primary one.
func (vk *VerifyingKey) extraInputCount() int {
	return len(vk.IC) - 2
}
