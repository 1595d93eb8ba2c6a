// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto/bn256"

	"github.com/tetsuo-ai/tetsuo-go/curve"
	"github.com/tetsuo-ai/tetsuo-go/field"
)

// ProofType identifies the statement a proof attests to.
type ProofType uint8

// ProofTypeReputation proves a committed score meets a claimed threshold.
const ProofTypeReputation ProofType = 0x01

// WireVersion is the only supported serialization version.
const WireVersion = 1

// Wire layout: version(1) type(1) flags(1) timestamp(4, big-endian)
// agent_pk(32) commitment(32) A(64) B(128) C(64), then optional extra
// public inputs as 32-byte big-endian scalars.
const (
	offVersion    = 0
	offType       = 1
	offFlags      = 2
	offTimestamp  = 3
	offAgentPK    = 7
	offCommitment = 39
	offA          = 71
	offB          = 135
	offC          = 263

	// MinProofSize is the smallest parseable wire record.
	MinProofSize = offC + curve.EncodedSize

	// MaxExtraInputs bounds the trailing public input scalars.
	MaxExtraInputs = 16

	// MaxProofSize bounds the total wire record.
	MaxProofSize = MinProofSize + MaxExtraInputs*field.Bytes
)

var (
	// ErrProofTooShort is returned for records under MinProofSize.
	ErrProofTooShort = errors.New("verify: proof record too short")

	// ErrProofTooLong is returned for records over MaxProofSize.
	ErrProofTooLong = errors.New("verify: proof record too long")

	// ErrBadVersion is returned when the version byte is unsupported.
	ErrBadVersion = errors.New("verify: unsupported proof version")

	// ErrBadProofType is returned for an unrecognized proof type.
	ErrBadProofType = errors.New("verify: unrecognized proof type")

	// ErrBadInputLength is returned when trailing public input bytes are
	// not a whole number of 32-byte scalars.
	ErrBadInputLength = errors.New("verify: public input bytes not 32-byte aligned")
)

// fieldModulus as a uint256 for reducing unvalidated 32-byte values.
var fieldModulus = func() *uint256.Int {
	b := field.ModulusBytes()
	return new(uint256.Int).SetBytes(b[:])
}()

// reduceToField maps arbitrary 32 bytes into the field by reduction mod p.
// Used for opaque values (keys, commitments, public inputs) whose encoding
// is not required to be canonical on the wire.
func reduceToField(b []byte) field.Element {
	u := new(uint256.Int).SetBytes(b)
	u.Mod(u, fieldModulus)
	out := u.Bytes32()
	e, err := field.FromBytes(out[:])
	if err != nil {
		// Unreachable: the value was just reduced below p.
		panic("verify: reduction out of range")
	}
	return e
}

// reduceToScalar is reduceToField keeping the canonical representation,
// for values used as curve multiplication scalars.
func reduceToScalar(b []byte) field.Canonical {
	e := reduceToField(b)
	return e.ToCanonical()
}

// Proof is a parsed and point-validated wire record.
type Proof struct {
	Type       ProofType
	Threshold  uint8
	Timestamp  uint32
	AgentPK    field.Element
	Commitment field.Element
	A          curve.Point
	B          *bn256.G2
	C          curve.Point
	Extra      []field.Canonical

	// agentPKRaw keeps the wire bytes for exclusion proofs.
	agentPKRaw [32]byte
}

// ParseProof decodes and validates a wire record. Curve points are checked
// for field membership and curve equation; opaque scalars are reduced into
// the field. It never reads past len(wire) for any input.
func ParseProof(wire []byte) (*Proof, error) {
	if len(wire) < MinProofSize {
		return nil, ErrProofTooShort
	}
	if len(wire) > MaxProofSize {
		return nil, ErrProofTooLong
	}
	if wire[offVersion] != WireVersion {
		return nil, ErrBadVersion
	}
	if ProofType(wire[offType]) != ProofTypeReputation {
		return nil, ErrBadProofType
	}
	extraBytes := len(wire) - MinProofSize
	if extraBytes%field.Bytes != 0 {
		return nil, ErrBadInputLength
	}

	p := &Proof{
		Type:      ProofType(wire[offType]),
		Threshold: wire[offFlags],
		Timestamp: binary.BigEndian.Uint32(wire[offTimestamp:offAgentPK]),
	}
	copy(p.agentPKRaw[:], wire[offAgentPK:offCommitment])
	p.AgentPK = reduceToField(wire[offAgentPK:offCommitment])
	p.Commitment = reduceToField(wire[offCommitment:offA])

	var err error
	p.A, err = curve.Decode(wire[offA:offB])
	if err != nil {
		return nil, fmt.Errorf("proof point A: %w", err)
	}
	p.B, err = curve.DecodeG2(wire[offB:offC])
	if err != nil {
		return nil, fmt.Errorf("proof point B: %w", err)
	}
	p.C, err = curve.Decode(wire[offC:MinProofSize])
	if err != nil {
		return nil, fmt.Errorf("proof point C: %w", err)
	}

	n := extraBytes / field.Bytes
	if n > 0 {
		p.Extra = make([]field.Canonical, n)
		for i := 0; i < n; i++ {
			off := MinProofSize + i*field.Bytes
			p.Extra[i] = reduceToScalar(wire[off : off+field.Bytes])
		}
	}
	return p, nil
}

// BuildProof assembles a wire record from its components. The point
// encodings are copied as-is; use curve.Point.Encode and bn256.G2.Marshal
// to produce them.
func BuildProof(threshold uint8, timestamp uint32, agentPK, commitment [32]byte, a, b, c []byte, extra [][field.Bytes]byte) ([]byte, error) {
	if len(a) != curve.EncodedSize || len(c) != curve.EncodedSize {
		return nil, curve.ErrPointLength
	}
	if len(b) != curve.G2EncodedSize {
		return nil, curve.ErrG2PointLength
	}
	if len(extra) > MaxExtraInputs {
		return nil, ErrProofTooLong
	}

	wire := make([]byte, MinProofSize+len(extra)*field.Bytes)
	wire[offVersion] = WireVersion
	wire[offType] = byte(ProofTypeReputation)
	wire[offFlags] = threshold
	binary.BigEndian.PutUint32(wire[offTimestamp:], timestamp)
	copy(wire[offAgentPK:], agentPK[:])
	copy(wire[offCommitment:], commitment[:])
	copy(wire[offA:], a)
	copy(wire[offB:], b)
	copy(wire[offC:], c)
	for i := range extra {
		copy(wire[MinProofSize+i*field.Bytes:], extra[i][:])
	}
	return wire, nil
}
