// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reputation layers score commitments and tier policy on top of
// the proof verification engine. Scores live in [0, 10000]; the wire
// format's threshold byte carries the claimed threshold in percent, so
// tier thresholds map to 25, 50, 75 and 90.
package reputation

import (
	"crypto/subtle"
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/tetsuo-ai/tetsuo-go/field"
	"github.com/tetsuo-ai/tetsuo-go/poseidon"
	"github.com/tetsuo-ai/tetsuo-go/verify"
)

// MaxScore is the upper bound of the reputation scale.
const MaxScore = 10000

// Tier is a named reputation band.
type Tier uint8

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierPlatinum
)

// Tier cut-offs on the score scale.
const (
	BronzeThreshold   = 2500
	SilverThreshold   = 5000
	GoldThreshold     = 7500
	PlatinumThreshold = 9000
)

var (
	// ErrScoreRange is returned for scores above MaxScore.
	ErrScoreRange = errors.New("reputation: score exceeds maximum")

	// ErrCommitmentMismatch is returned when a proof's commitment does not
	// match the expected one.
	ErrCommitmentMismatch = errors.New("reputation: commitment mismatch")

	// ErrBelowThreshold is returned when an authentic proof claims less
	// than the required score.
	ErrBelowThreshold = errors.New("reputation: claimed threshold below requirement")

	// ErrProofInvalid is returned when the underlying engine rejects the
	// proof.
	ErrProofInvalid = errors.New("reputation: invalid proof")
)

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	default:
		return "none"
	}
}

// Threshold returns the minimum score for the tier.
func (t Tier) Threshold() uint16 {
	switch t {
	case TierBronze:
		return BronzeThreshold
	case TierSilver:
		return SilverThreshold
	case TierGold:
		return GoldThreshold
	case TierPlatinum:
		return PlatinumThreshold
	default:
		return 0
	}
}

// TierFor maps a score to the highest tier it reaches.
func TierFor(score uint16) Tier {
	switch {
	case score >= PlatinumThreshold:
		return TierPlatinum
	case score >= GoldThreshold:
		return TierGold
	case score >= SilverThreshold:
		return TierSilver
	case score >= BronzeThreshold:
		return TierBronze
	default:
		return TierNone
	}
}

// Qualifies reports whether a score reaches the given tier.
func Qualifies(score uint16, t Tier) bool {
	return score >= t.Threshold()
}

// ThresholdPercent converts a score threshold to the wire flags byte.
func ThresholdPercent(score uint16) uint8 {
	if score > MaxScore {
		score = MaxScore
	}
	return uint8(score / 100)
}

var fieldModulus = func() *uint256.Int {
	b := field.ModulusBytes()
	return new(uint256.Int).SetBytes(b[:])
}()

// Commit computes the binding score commitment Poseidon(score, secret).
// The secret is the prover's blinding value, reduced into the field;
// without it the score cannot be recovered from the commitment.
func Commit(score uint16, secret [32]byte) (common.Hash, error) {
	if score > MaxScore {
		return common.Hash{}, ErrScoreRange
	}
	s := field.FromUint64(uint64(score))
	sm := s.ToMont()

	u := new(uint256.Int).SetBytes(secret[:])
	u.Mod(u, fieldModulus)
	sb := u.Bytes32()
	sec, err := field.FromBytes(sb[:])
	if err != nil {
		// Unreachable: the value was just reduced below p.
		panic("reputation: secret reduction out of range")
	}

	h := poseidon.Hash(sm, sec)
	return common.Hash(h.Bytes()), nil
}

// Verifier checks reputation proofs against expected commitments.
type Verifier struct {
	ctx *verify.Context
}

// NewVerifier wraps a verification context.
func NewVerifier(ctx *verify.Context) *Verifier {
	return &Verifier{ctx: ctx}
}

// VerifyProof checks that a wire proof carries the expected commitment,
// claims at least minScore, and verifies cryptographically. The
// commitment is compared in constant time before the engine runs.
func (v *Verifier) VerifyProof(wire []byte, expected common.Hash, minScore uint16) error {
	p, err := verify.ParseProof(wire)
	if err != nil {
		return ErrProofInvalid
	}

	got := p.Commitment.Bytes()
	if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
		return ErrCommitmentMismatch
	}
	if uint16(p.Threshold)*100 < minScore {
		return ErrBelowThreshold
	}

	switch v.ctx.VerifyProof(p) {
	case verify.ResultOK:
		return nil
	case verify.ResultBelowThreshold:
		return ErrBelowThreshold
	default:
		return ErrProofInvalid
	}
}
