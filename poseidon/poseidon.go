// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package poseidon implements the Poseidon permutation over the BN254 base
// field with width t=3, an x^5 S-box, 8 full and 57 partial rounds.
//
// Round constants are derived deterministically from a BLAKE3 XOF over a
// fixed domain tag, and the MDS matrix is the 3x3 Cauchy matrix built from
// x = (0, 1, 2) and y = (3, 4, 5). The parameterization is self-consistent:
// commitments and nullifiers produced here verify against proofs produced
// with the same tables.
package poseidon

import (
	"sync"

	"github.com/zeebo/blake3"

	"github.com/tetsuo-ai/tetsuo-go/field"
)

const (
	// Width is the permutation state width t.
	Width = 3

	// RoundsFull is the number of full rounds, split evenly around the
	// partial rounds.
	RoundsFull = 8

	// RoundsPartial is the number of partial rounds.
	RoundsPartial = 57

	totalRounds = RoundsFull + RoundsPartial
	halfFull    = RoundsFull / 2
)

// constantsTag is the domain separator for round constant derivation.
// Changing it changes every hash this package produces.
const constantsTag = "tetsuo/poseidon-bn254-t3-v1"

type params struct {
	rc  [totalRounds * Width]field.Element
	mds [Width][Width]field.Element
}

var (
	paramsOnce sync.Once
	paramsInst *params
)

// getParams builds the round constant and MDS tables on first use.
func getParams() *params {
	paramsOnce.Do(func() {
		p := &params{}

		h := blake3.New()
		h.Write([]byte(constantsTag))
		xof := h.Digest()

		var buf [field.Bytes]byte
		for i := range p.rc {
			// Rejection-sample the XOF stream for a canonical value.
			for {
				if _, err := xof.Read(buf[:]); err != nil {
					panic("poseidon: blake3 xof read failed")
				}
				var c field.Canonical
				if err := c.SetBytes(buf[:]); err == nil {
					p.rc[i] = c.ToMont()
					break
				}
			}
		}

		// Cauchy matrix m[i][j] = 1 / (x_i + y_j), x = (0,1,2), y = (3,4,5).
		denoms := make([]field.Element, Width*Width)
		for i := 0; i < Width; i++ {
			for j := 0; j < Width; j++ {
				c := field.FromUint64(uint64(i + j + 3))
				denoms[i*Width+j] = c.ToMont()
			}
		}
		inverses := field.BatchInvert(denoms)
		for i := 0; i < Width; i++ {
			for j := 0; j < Width; j++ {
				p.mds[i][j] = inverses[i*Width+j]
			}
		}

		paramsInst = p
	})
	return paramsInst
}

// sbox raises x to the fifth power in place.
func sbox(x *field.Element) {
	var x2, x4 field.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(&x4, x)
}

// permute runs the full Poseidon permutation over state.
func permute(p *params, state *[Width]field.Element) {
	for r := 0; r < totalRounds; r++ {
		for i := 0; i < Width; i++ {
			state[i].Add(&state[i], &p.rc[r*Width+i])
		}
		if r < halfFull || r >= totalRounds-halfFull {
			for i := 0; i < Width; i++ {
				sbox(&state[i])
			}
		} else {
			sbox(&state[0])
		}

		var mixed [Width]field.Element
		for i := 0; i < Width; i++ {
			var acc, t field.Element
			for j := 0; j < Width; j++ {
				t.Mul(&p.mds[i][j], &state[j])
				acc.Add(&acc, &t)
			}
			mixed[i] = acc
		}
		*state = mixed
	}
}

// Hash absorbs up to three field elements into a zero state, runs the
// permutation once, and returns the first state word. Passing no inputs or
// more than the state width is a programming error.
func Hash(inputs ...field.Element) field.Element {
	if len(inputs) == 0 || len(inputs) > Width {
		panic("poseidon: input count must be between 1 and 3")
	}
	p := getParams()

	var state [Width]field.Element
	for i := range inputs {
		state[i].Add(&state[i], &inputs[i])
	}
	permute(p, &state)
	return state[0]
}
