// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verify implements policy-driven verification of Groth16
// reputation proofs: wire parsing, the pairing check, nullifier
// computation, blacklist exclusion proofs, and batch verification with a
// randomized linear combination.
package verify

import (
	"sync"
	"sync/atomic"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/tetsuo-ai/tetsuo-go/arena"
	"github.com/tetsuo-ai/tetsuo-go/field"
	"github.com/tetsuo-ai/tetsuo-go/poseidon"
)

// Config carries the verification policy. The zero value of each policy
// field is permissive: no minimum threshold, no age bound, no blacklist.
type Config struct {
	// MinThreshold is the lowest acceptable claimed threshold.
	MinThreshold uint8

	// MaxProofAge bounds proof age in seconds. Zero disables the check;
	// the check also needs SetTime to have been called.
	MaxProofAge uint32

	// BlacklistRoot is the sparse Merkle root agents must prove exclusion
	// from. All zeros disables the check.
	BlacklistRoot [32]byte

	// VerifyingKey is the serialized Groth16 verification key. Required.
	VerifyingKey []byte

	// Logger receives per-proof debug events. Optional.
	Logger log.Logger
}

// Stats is a snapshot of a context's counters.
type Stats struct {
	TotalVerified uint64
	TotalFailed   uint64
	TotalBatches  uint64
}

// Context owns a parsed verification key and policy, plus running
// counters. The key and policy are immutable after creation, so a single
// context may be shared across goroutines; counters are atomic.
type Context struct {
	vk            *VerifyingKey
	minThreshold  uint8
	maxProofAge   uint32
	blacklistRoot [32]byte

	now atomic.Uint32

	totalVerified atomic.Uint64
	totalFailed   atomic.Uint64
	totalBatches  atomic.Uint64

	log log.Logger

	closed atomic.Bool
}

// NewContext parses the verification key and freezes the policy.
func NewContext(cfg Config) (*Context, error) {
	if len(cfg.VerifyingKey) == 0 {
		return nil, ErrNoVerifyingKey
	}
	vk, err := ParseVerifyingKey(cfg.VerifyingKey)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Context{
		vk:            vk,
		minThreshold:  cfg.MinThreshold,
		maxProofAge:   cfg.MaxProofAge,
		blacklistRoot: cfg.BlacklistRoot,
		log:           logger,
	}, nil
}

// SetTime supplies the wall clock second used for proof age checks. Age
// checking stays disabled until the first call.
func (c *Context) SetTime(nowUnix uint32) {
	c.now.Store(nowUnix)
}

// Stats returns a snapshot of the counters.
func (c *Context) Stats() Stats {
	return Stats{
		TotalVerified: c.totalVerified.Load(),
		TotalFailed:   c.totalFailed.Load(),
		TotalBatches:  c.totalBatches.Load(),
	}
}

// Close releases the context. Further use is a caller error.
func (c *Context) Close() {
	c.closed.Store(true)
	c.vk = nil
}

// count records one verification outcome.
func (c *Context) count(r Result) {
	if r == ResultOK {
		c.totalVerified.Add(1)
	} else {
		c.totalFailed.Add(1)
	}
}

// ComputeNullifier derives the replay tag Poseidon(agent_pk, nonce).
// Persistence and replay tracking belong to the caller.
func ComputeNullifier(agentPK [32]byte, nonce uint64) common.Hash {
	pk := reduceToField(agentPK[:])
	n := field.FromUint64(nonce)
	nm := n.ToMont()
	h := poseidon.Hash(pk, nm)
	return common.Hash(h.Bytes())
}

// scratchPool hands out per-call arenas, mirroring a thread-local scratch
// region. Arenas returned to the pool are reset.
var scratchPool = sync.Pool{
	New: func() any { return arena.New(arena.DefaultBlockSize) },
}

func getScratch() *arena.Arena {
	return scratchPool.Get().(*arena.Arena)
}

func putScratch(a *arena.Arena) {
	a.Reset()
	scratchPool.Put(a)
}
