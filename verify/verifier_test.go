// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	"math/big"
	"testing"

	bn256 "github.com/luxfi/crypto/bn256/google"
	"github.com/stretchr/testify/require"

	"github.com/tetsuo-ai/tetsuo-go/curve"
	"github.com/tetsuo-ai/tetsuo-go/field"
	"github.com/tetsuo-ai/tetsuo-go/poseidon"
)

// fixture holds a self-consistent verification key and the material to
// assemble passing proofs against it.
type fixture struct {
	vkBytes []byte
	agentPK [32]byte
	commit  [32]byte
}

func newFixture(t testing.TB, extraIC int) *fixture {
	t.Helper()
	g := curve.Generator()

	five := field.FromUint64(5)
	var alpha curve.Point
	alpha.ScalarMul(&g, &five)

	g2 := new(bn256.G2).ScalarBaseMult(big.NewInt(1))
	g2b := g2.Marshal()

	ic := make([]curve.Point, 2+extraIC)
	for i := range ic {
		k := field.FromUint64(uint64(i + 1))
		ic[i].ScalarMul(&g, &k)
	}

	vkb := alpha.Encode()
	out := append([]byte{}, vkb[:]...)
	out = append(out, g2b...)
	out = append(out, g2b...)
	out = append(out, g2b...)
	for i := range ic {
		p := ic[i].Encode()
		out = append(out, p[:]...)
	}

	f := &fixture{vkBytes: out}
	copy(f.agentPK[:], []byte("agent-key-0000000000000000000001"))
	copy(f.commit[:], []byte("commitment-000000000000000000001"))
	f.commit[0] = 0x10 // keep the value comfortably below the modulus
	f.agentPK[0] = 0x11
	return f
}

// proofWire builds a wire record whose pairing product collapses to the
// identity: A is chosen equal to alpha and B equal to beta, and C is the
// negated input combination so the gamma and delta terms cancel.
func (f *fixture) proofWire(t testing.TB, threshold uint8, timestamp uint32, extra []field.Canonical) []byte {
	t.Helper()
	vk, err := ParseVerifyingKey(f.vkBytes)
	require.NoError(t, err)
	require.Len(t, extra, vk.extraInputCount())

	p := &Proof{
		Threshold:  threshold,
		AgentPK:    reduceToField(f.agentPK[:]),
		Commitment: reduceToField(f.commit[:]),
		Extra:      extra,
	}
	inputs := publicInputs(p)

	vkX := curve.Infinity()
	vkX.Set(&vk.IC[0])
	for i, in := range inputs {
		var term curve.Point
		term.ScalarMul(&vk.IC[i+1], &in)
		vkX.Add(&vkX, &term)
	}
	var cPoint curve.Point
	cPoint.Neg(&vkX)
	require.False(t, cPoint.IsInfinity())

	aEnc := vk.Alpha.Encode()
	cEnc := cPoint.Encode()
	bEnc := vk.Beta.Marshal()

	extraBytes := make([][field.Bytes]byte, len(extra))
	for i := range extra {
		extraBytes[i] = extra[i].Bytes()
	}
	wire, err := BuildProof(threshold, timestamp, f.agentPK, f.commit, aEnc[:], bEnc, cEnc[:], extraBytes)
	require.NoError(t, err)
	return wire
}

func newTestContext(t testing.TB, f *fixture, cfg Config) *Context {
	t.Helper()
	cfg.VerifyingKey = f.vkBytes
	ctx, err := NewContext(cfg)
	require.NoError(t, err)
	return ctx
}

func TestVerifyValidProof(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MinThreshold: 50})

	wire := f.proofWire(t, 75, 0, nil)
	require.Equal(t, ResultOK, ctx.Verify(wire))

	st := ctx.Stats()
	require.Equal(t, uint64(1), st.TotalVerified)
	require.Equal(t, uint64(0), st.TotalFailed)
}

func TestVerifyProofParsed(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MinThreshold: 50})

	p, err := ParseProof(f.proofWire(t, 75, 0, nil))
	require.NoError(t, err)
	require.Equal(t, ResultOK, ctx.VerifyProof(p))

	low, err := ParseProof(f.proofWire(t, 25, 0, nil))
	require.NoError(t, err)
	require.Equal(t, ResultBelowThreshold, ctx.VerifyProof(low))

	st := ctx.Stats()
	require.Equal(t, uint64(1), st.TotalVerified)
	require.Equal(t, uint64(1), st.TotalFailed)
}

func TestVerifyExtraPublicInputs(t *testing.T) {
	f := newFixture(t, 2)
	ctx := newTestContext(t, f, Config{})

	extra := []field.Canonical{field.FromUint64(1234), field.FromUint64(99)}
	wire := f.proofWire(t, 10, 0, extra)
	require.Equal(t, ResultOK, ctx.Verify(wire))

	// Dropping the trailing scalars breaks the input/IC arity.
	require.Equal(t, ResultMalformed, ctx.Verify(wire[:MinProofSize]))
}

func TestVerifyBelowThreshold(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MinThreshold: 50})

	wire := f.proofWire(t, 30, 0, nil)
	require.Equal(t, ResultBelowThreshold, ctx.Verify(wire))

	st := ctx.Stats()
	require.Equal(t, uint64(0), st.TotalVerified)
	require.Equal(t, uint64(1), st.TotalFailed)
}

func TestVerifyPrecedenceCryptoBeforePolicy(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MinThreshold: 50})

	// Under threshold and with identity proof points: authenticity is
	// decided first, so the verdict is malformed, not below-threshold.
	wire := f.proofWire(t, 30, 0, nil)
	for i := offA; i < MinProofSize; i++ {
		wire[i] = 0
	}
	require.Equal(t, ResultMalformed, ctx.Verify(wire))
}

func TestVerifyRejectsBadStructure(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{})
	wire := f.proofWire(t, 75, 0, nil)

	short := wire[:MinProofSize-1]
	require.Equal(t, ResultMalformed, ctx.Verify(short))

	badVersion := append([]byte{}, wire...)
	badVersion[offVersion] = 2
	require.Equal(t, ResultMalformed, ctx.Verify(badVersion))

	badType := append([]byte{}, wire...)
	badType[offType] = 0x7f
	require.Equal(t, ResultMalformed, ctx.Verify(badType))
}

func TestVerifyRejectsTamperedCommitment(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{})
	wire := f.proofWire(t, 75, 0, nil)

	wire[offCommitment+5] ^= 0xff
	require.Equal(t, ResultMalformed, ctx.Verify(wire))
}

func TestVerifyRejectsTamperedThreshold(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{})
	wire := f.proofWire(t, 75, 0, nil)

	// The claimed threshold feeds the bound public input, so raising it
	// after the fact invalidates the pairing.
	wire[offFlags] = 200
	require.Equal(t, ResultMalformed, ctx.Verify(wire))
}

func TestVerifyProofAge(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MaxProofAge: 100})

	wire := f.proofWire(t, 75, 1000, nil)

	// No clock supplied yet: age checking is disabled.
	require.Equal(t, ResultOK, ctx.Verify(wire))

	ctx.SetTime(1050)
	require.Equal(t, ResultOK, ctx.Verify(wire))

	ctx.SetTime(2000)
	require.Equal(t, ResultExpired, ctx.Verify(wire))
}

func TestVerifyWithExclusion(t *testing.T) {
	f := newFixture(t, 0)

	// One-level tree: root = H(leaf, sibling).
	leaf := reduceToField(f.agentPK[:])
	var sibBytes [32]byte
	sibBytes[0] = 0x22
	sib := reduceToField(sibBytes[:])
	root := hashPair(leaf, sib)

	ctx := newTestContext(t, f, Config{BlacklistRoot: root})
	wire := f.proofWire(t, 75, 0, nil)

	proof := make([]byte, smtNodeSize+32)
	proof[0] = 0 // leaf hashes on the left
	copy(proof[1:33], sibBytes[:])
	require.Equal(t, ResultOK, ctx.VerifyWithExclusion(wire, proof))

	// Missing or wrong-direction proofs are treated as blacklisted.
	require.Equal(t, ResultBlacklisted, ctx.VerifyWithExclusion(wire, nil))
	bad := append([]byte{}, proof...)
	bad[0] = 1
	require.Equal(t, ResultBlacklisted, ctx.VerifyWithExclusion(wire, bad))

	// Without a configured root the exclusion proof is ignored.
	open := newTestContext(t, f, Config{})
	require.Equal(t, ResultOK, open.VerifyWithExclusion(wire, nil))
}

func TestComputeNullifier(t *testing.T) {
	var pk [32]byte
	pk[0] = 0x08

	n1 := ComputeNullifier(pk, 1)
	n2 := ComputeNullifier(pk, 1)
	require.Equal(t, n1, n2)

	n3 := ComputeNullifier(pk, 2)
	require.NotEqual(t, n1, n3, "nullifier must depend on nonce")

	var pk2 [32]byte
	pk2[0] = 0x09
	n4 := ComputeNullifier(pk2, 1)
	require.NotEqual(t, n1, n4, "nullifier must depend on key")
}

func TestNewContextRequiresKey(t *testing.T) {
	_, err := NewContext(Config{})
	require.ErrorIs(t, err, ErrNoVerifyingKey)

	_, err = NewContext(Config{VerifyingKey: []byte{1, 2, 3}})
	require.ErrorIs(t, err, ErrBadKeyLength)
}

func TestParseVerifyingKey(t *testing.T) {
	f := newFixture(t, 1)
	vk, err := ParseVerifyingKey(f.vkBytes)
	require.NoError(t, err)
	require.Len(t, vk.IC, 3)
	require.Equal(t, 1, vk.extraInputCount())

	// Round trip through the encoder.
	back, err := ParseVerifyingKey(EncodeVerifyingKey(vk))
	require.NoError(t, err)
	require.True(t, back.Alpha.Equal(&vk.Alpha))
	require.Equal(t, vk.Beta.Marshal(), back.Beta.Marshal())

	// Only IC[0] present: below the minimum table size.
	truncated := f.vkBytes[:vkFixedSize+curve.EncodedSize]
	_, err = ParseVerifyingKey(truncated)
	require.ErrorIs(t, err, ErrBadICCount)

	// An off-curve alpha must be rejected.
	bad := append([]byte{}, f.vkBytes...)
	bad[31] ^= 1
	_, err = ParseVerifyingKey(bad)
	require.Error(t, err)
}

func TestStatsCountExactlyOncePerCall(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MinThreshold: 50})

	good := f.proofWire(t, 75, 0, nil)
	low := f.proofWire(t, 30, 0, nil)

	ctx.Verify(good)
	ctx.Verify(low)
	ctx.Verify([]byte{1})

	st := ctx.Stats()
	require.Equal(t, uint64(1), st.TotalVerified)
	require.Equal(t, uint64(2), st.TotalFailed)
}

// hashPair mirrors the exclusion proof's interior node hashing.
func hashPair(l, r field.Element) [32]byte {
	h := poseidon.Hash(l, r)
	return h.Bytes()
}
