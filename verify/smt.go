// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	"crypto/subtle"

	"github.com/tetsuo-ai/tetsuo-go/poseidon"
)

// Exclusion proof node: one direction byte then a 32-byte sibling hash.
const (
	smtNodeSize = 33

	// MaxExclusionDepth bounds the Merkle path length.
	MaxExclusionDepth = 256
)

// VerifyExclusion walks a sparse Merkle exclusion proof from the agent
// leaf up to the expected blacklist root. Each node contributes a
// direction byte (0: current hashes left, 1: current hashes right) and a
// sibling hash. The final comparison is constant time.
//
// The proof must be depth*33 node bytes followed by a 32-byte reserved
// tail; depth may be zero, in which case the leaf itself must match the
// root.
func VerifyExclusion(root [32]byte, leaf [32]byte, proof []byte) bool {
	if len(proof) < 32 || len(proof) > 32+MaxExclusionDepth*smtNodeSize {
		return false
	}
	if (len(proof)-32)%smtNodeSize != 0 {
		return false
	}
	depth := (len(proof) - 32) / smtNodeSize

	current := reduceToField(leaf[:])
	for i := 0; i < depth; i++ {
		node := proof[i*smtNodeSize : (i+1)*smtNodeSize]
		sibling := reduceToField(node[1:])
		switch node[0] {
		case 0:
			current = poseidon.Hash(current, sibling)
		case 1:
			current = poseidon.Hash(sibling, current)
		default:
			return false
		}
	}

	got := current.Bytes()
	return subtle.ConstantTimeCompare(got[:], root[:]) == 1
}
