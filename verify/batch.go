// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	crand "crypto/rand"
	"errors"

	"github.com/luxfi/crypto/bn256"
	log "github.com/luxfi/log"

	"github.com/tetsuo-ai/tetsuo-go/arena"
	"github.com/tetsuo-ai/tetsuo-go/curve"
	"github.com/tetsuo-ai/tetsuo-go/field"
)

// MaxBatchSize bounds a batch's capacity.
const MaxBatchSize = 1024

// ErrBatchSealed is returned by Add after Verify has run; Reset reopens
// the batch.
var ErrBatchSealed = errors.New("verify: batch already verified")

// Batch accumulates proofs and verifies them together with one randomized
// pairing product. A batch belongs to a single goroutine.
type Batch struct {
	ctx      *Context
	capacity int

	proofs  []*Proof // nil entry: rejected at Add
	randoms []field.Canonical
	results []Result
	sealed  bool
}

// NewBatch creates a batch holding up to capacity proofs.
func (c *Context) NewBatch(capacity int) (*Batch, error) {
	if capacity <= 0 || capacity > MaxBatchSize {
		return nil, ErrBatchCapacity
	}
	return &Batch{
		ctx:      c,
		capacity: capacity,
		proofs:   make([]*Proof, 0, capacity),
		randoms:  make([]field.Canonical, 0, capacity),
		results:  make([]Result, 0, capacity),
	}, nil
}

// randomCoefficient draws a nonzero 128-bit blinding scalar.
func randomCoefficient() (field.Canonical, error) {
	for {
		var b [16]byte
		if _, err := crand.Read(b[:]); err != nil {
			return field.Canonical{}, err
		}
		var c field.Canonical
		for i := 0; i < 2; i++ {
			for j := 0; j < 8; j++ {
				c[i] |= uint64(b[i*8+j]) << (8 * uint(j))
			}
		}
		if !c.IsZero() {
			return c, nil
		}
	}
}

// Add parses and enqueues one wire record. A record that fails parsing is
// still consumed, recorded as ResultMalformed; only a full or sealed batch
// returns an error.
func (b *Batch) Add(wire []byte) error {
	if b.sealed {
		return ErrBatchSealed
	}
	if len(b.proofs) >= b.capacity {
		return ErrBatchFull
	}

	p, err := ParseProof(wire)
	if err != nil {
		b.ctx.log.Debug("batch entry rejected", log.String("err", err.Error()))
		b.proofs = append(b.proofs, nil)
		b.randoms = append(b.randoms, field.Canonical{})
		b.results = append(b.results, ResultMalformed)
		return nil
	}
	r, err := randomCoefficient()
	if err != nil {
		return err
	}
	b.proofs = append(b.proofs, p)
	b.randoms = append(b.randoms, r)
	b.results = append(b.results, ResultOK)
	return nil
}

// Len returns the number of enqueued records, including rejected ones.
func (b *Batch) Len() int {
	return len(b.proofs)
}

// Verify checks all enqueued proofs. Authenticity is established with a
// single pairing product over a random linear combination; if that check
// fails, proofs are re-verified one by one so each entry gets an exact
// result. Policy is applied per proof after authenticity. An empty batch
// verifies trivially.
//
// The aggregate result is ResultOK when every entry passed, else the first
// failing entry's result. Context counters are updated once per entry.
func (b *Batch) Verify() Result {
	if b.sealed {
		return b.aggregate()
	}
	b.sealed = true
	b.ctx.totalBatches.Add(1)

	s := getScratch()
	defer putScratch(s)

	// Indices still in play after Add-time and structural screening.
	live := make([]int, 0, len(b.proofs))
	for i, p := range b.proofs {
		if p == nil {
			continue
		}
		if p.A.IsInfinity() || p.C.IsInfinity() || len(publicInputs(p)) != len(b.ctx.vk.IC)-1 {
			b.results[i] = ResultMalformed
			continue
		}
		live = append(live, i)
	}

	if len(live) > 0 {
		if b.combinedCheck(s, live) {
			for _, i := range live {
				b.results[i] = b.ctx.applyPolicy(b.proofs[i])
			}
		} else {
			// Attribute the failure exactly.
			for _, i := range live {
				if b.ctx.pairingHolds(s, b.proofs[i]) {
					b.results[i] = b.ctx.applyPolicy(b.proofs[i])
				} else {
					b.results[i] = ResultMalformed
				}
			}
		}
	}

	for _, r := range b.results {
		b.ctx.count(r)
	}
	return b.aggregate()
}

// combinedCheck evaluates the blinded product
//
//	prod_i e(r_i * -A_i, B_i) * e(sum(r_i) * alpha, beta)
//	    * e(sum(r_i * vk_x_i), gamma) * e(sum(r_i * C_i), delta) == 1
//
// which holds exactly when every individual equation holds, up to the
// 2^-128 blinding soundness bound.
func (b *Batch) combinedCheck(s *arena.Arena, live []int) bool {
	n := len(live)
	cp := s.Checkpoint()
	defer s.Restore(cp)

	vkXs := arena.Make[curve.Point](s, n)
	cs := arena.Make[curve.Point](s, n)
	scaledA := arena.Make[curve.Point](s, n)
	randoms := make([]field.Canonical, n)

	var sumR field.Element
	for k, i := range live {
		p := b.proofs[i]
		vkX, ok := computeVkX(s, b.ctx.vk, publicInputs(p))
		if !ok {
			return false
		}
		vkXs[k] = vkX
		cs[k] = p.C

		var negA curve.Point
		negA.Neg(&p.A)
		scaledA[k].ScalarMul(&negA, &b.randoms[i])

		randoms[k] = b.randoms[i]
		rm := b.randoms[i].ToMont()
		sumR.Add(&sumR, &rm)
	}

	sumRC := sumR.ToCanonical()
	var alphaTerm curve.Point
	alphaTerm.ScalarMul(&b.ctx.vk.Alpha, &sumRC)
	vkXTerm := curve.MSM(s, vkXs, randoms)
	cTerm := curve.MSM(s, cs, randoms)

	g1 := make([]curve.Point, 0, n+3)
	g2 := make([]*bn256.G2, 0, n+3)
	for k, i := range live {
		g1 = append(g1, scaledA[k])
		g2 = append(g2, b.proofs[i].B)
	}
	g1 = append(g1, alphaTerm, vkXTerm, cTerm)
	g2 = append(g2, b.ctx.vk.Beta, b.ctx.vk.Gamma, b.ctx.vk.Delta)

	ok, err := curve.PairingCheck(g1, g2)
	if err != nil {
		return false
	}
	return ok
}

// aggregate folds per-entry results into one.
func (b *Batch) aggregate() Result {
	for _, r := range b.results {
		if r != ResultOK {
			return r
		}
	}
	return ResultOK
}

// Results returns the per-entry outcomes, valid after Verify.
func (b *Batch) Results() []Result {
	out := make([]Result, len(b.results))
	copy(out, b.results)
	return out
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.proofs = b.proofs[:0]
	b.randoms = b.randoms[:0]
	b.results = b.results[:0]
	b.sealed = false
}

// Close releases the batch. It is not usable afterwards.
func (b *Batch) Close() {
	b.proofs = nil
	b.randoms = nil
	b.results = nil
	b.sealed = true
}
