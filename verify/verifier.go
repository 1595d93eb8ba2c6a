// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	"github.com/luxfi/crypto/bn256"
	log "github.com/luxfi/log"

	"github.com/tetsuo-ai/tetsuo-go/arena"
	"github.com/tetsuo-ai/tetsuo-go/curve"
	"github.com/tetsuo-ai/tetsuo-go/field"
	"github.com/tetsuo-ai/tetsuo-go/poseidon"
)

// Verify checks a single wire record against the context's key and policy.
//
// Order of evaluation: structural checks, then the pairing check, then
// policy (threshold, age). A proof that is both cryptographically invalid
// and under threshold reports ResultMalformed; authenticity is decided
// before policy is consulted. Exactly one counter is bumped per call.
func (c *Context) Verify(wire []byte) Result {
	r := c.verifyOne(wire)
	c.count(r)
	return r
}

// VerifyProof is Verify for an already parsed record, skipping the wire
// decode. The proof must come from ParseProof.
func (c *Context) VerifyProof(p *Proof) Result {
	r := c.verifyParsed(p)
	c.count(r)
	return r
}

// VerifyWithExclusion is Verify plus a blacklist exclusion check. When the
// context has a blacklist root configured, the caller must supply a sparse
// Merkle exclusion proof for the agent key; an absent or invalid proof
// yields ResultBlacklisted.
func (c *Context) VerifyWithExclusion(wire, exclusionProof []byte) Result {
	p, err := ParseProof(wire)
	var r Result
	if err != nil {
		c.log.Debug("proof rejected", log.String("stage", "parse"), log.String("err", err.Error()))
		r = ResultMalformed
	} else {
		r = c.verifyParsed(p)
		if r == ResultOK && c.blacklistRoot != ([32]byte{}) {
			if !VerifyExclusion(c.blacklistRoot, p.agentPKRaw, exclusionProof) {
				r = ResultBlacklisted
			}
		}
	}
	c.count(r)
	return r
}

// verifyOne runs the full pipeline without touching counters.
func (c *Context) verifyOne(wire []byte) Result {
	p, err := ParseProof(wire)
	if err != nil {
		c.log.Debug("proof rejected", log.String("stage", "parse"), log.String("err", err.Error()))
		return ResultMalformed
	}
	return c.verifyParsed(p)
}

// verifyParsed checks authenticity then policy for a parsed proof.
func (c *Context) verifyParsed(p *Proof) Result {
	s := getScratch()
	defer putScratch(s)

	if !c.pairingHolds(s, p) {
		c.log.Debug("proof rejected", log.String("stage", "pairing"))
		return ResultMalformed
	}
	return c.applyPolicy(p)
}

// applyPolicy checks threshold and age for an authentic proof.
func (c *Context) applyPolicy(p *Proof) Result {
	if p.Threshold < c.minThreshold {
		c.log.Debug("proof below threshold",
			log.Int("claimed", int(p.Threshold)),
			log.Int("min", int(c.minThreshold)))
		return ResultBelowThreshold
	}
	if c.maxProofAge > 0 {
		now := c.now.Load()
		if now > 0 && uint64(p.Timestamp)+uint64(c.maxProofAge) < uint64(now) {
			c.log.Debug("proof expired",
				log.Int("timestamp", int(p.Timestamp)),
				log.Int("maxAge", int(c.maxProofAge)))
			return ResultExpired
		}
	}
	return ResultOK
}

// primaryInput binds the statement to the wire header:
// Poseidon(agent_pk, commitment, threshold).
func primaryInput(p *Proof) field.Canonical {
	thr := field.FromUint64(uint64(p.Threshold))
	thrM := thr.ToMont()
	h := poseidon.Hash(p.AgentPK, p.Commitment, thrM)
	return h.ToCanonical()
}

// publicInputs assembles the scalar vector for the IC combination.
func publicInputs(p *Proof) []field.Canonical {
	in := make([]field.Canonical, 0, 1+len(p.Extra))
	in = append(in, primaryInput(p))
	return append(in, p.Extra...)
}

// computeVkX folds the public inputs into the key's IC table:
// vk_x = IC[0] + sum(inputs[i] * IC[i+1]).
func computeVkX(s *arena.Arena, vk *VerifyingKey, inputs []field.Canonical) (curve.Point, bool) {
	if len(inputs) != len(vk.IC)-1 {
		return curve.Point{}, false
	}
	acc := curve.MSM(s, vk.IC[1:], inputs)
	acc.Add(&acc, &vk.IC[0])
	return acc, true
}

// pairingHolds evaluates the Groth16 equation
//
//	e(A, B) = e(alpha, beta) * e(vk_x, gamma) * e(C, delta)
//
// as a single product check e(-A, B) * e(alpha, beta) * e(vk_x, gamma) *
// e(C, delta) == 1, with A negated in native coordinates.
func (c *Context) pairingHolds(s *arena.Arena, p *Proof) bool {
	if p.A.IsInfinity() || p.C.IsInfinity() {
		return false
	}

	vkX, ok := computeVkX(s, c.vk, publicInputs(p))
	if !ok {
		return false
	}

	var negA curve.Point
	negA.Neg(&p.A)

	g1 := []curve.Point{negA, c.vk.Alpha, vkX, p.C}
	g2 := []*bn256.G2{p.B, c.vk.Beta, c.vk.Gamma, c.vk.Delta}
	okPair, err := curve.PairingCheck(g1, g2)
	if err != nil {
		return false
	}
	return okPair
}
