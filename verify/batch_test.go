// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchEmptyVerifiesOk(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{})

	b, err := ctx.NewBatch(8)
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, ResultOK, b.Verify())
	require.Empty(t, b.Results())
	require.Equal(t, uint64(1), ctx.Stats().TotalBatches)
}

func TestBatchCapacity(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{})

	_, err := ctx.NewBatch(0)
	require.ErrorIs(t, err, ErrBatchCapacity)
	_, err = ctx.NewBatch(MaxBatchSize + 1)
	require.ErrorIs(t, err, ErrBatchCapacity)

	b, err := ctx.NewBatch(2)
	require.NoError(t, err)
	defer b.Close()

	wire := f.proofWire(t, 75, 0, nil)
	require.NoError(t, b.Add(wire))
	require.NoError(t, b.Add(wire))
	require.ErrorIs(t, b.Add(wire), ErrBatchFull)
	require.Equal(t, 2, b.Len())
}

func TestBatchSingleValid(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MinThreshold: 50})

	b, err := ctx.NewBatch(4)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Add(f.proofWire(t, 75, 0, nil)))
	require.Equal(t, ResultOK, b.Verify())
	require.Equal(t, []Result{ResultOK}, b.Results())

	st := ctx.Stats()
	require.Equal(t, uint64(1), st.TotalVerified)
	require.Equal(t, uint64(1), st.TotalBatches)
}

func TestBatchMixedResults(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{MinThreshold: 50})

	b, err := ctx.NewBatch(8)
	require.NoError(t, err)
	defer b.Close()

	good := f.proofWire(t, 75, 0, nil)
	low := f.proofWire(t, 30, 0, nil)
	forged := f.proofWire(t, 75, 0, nil)
	forged[offCommitment] ^= 0x55 // breaks the pairing, not the parse

	require.NoError(t, b.Add(good))
	require.NoError(t, b.Add(low))
	require.NoError(t, b.Add(forged))
	require.NoError(t, b.Add([]byte{0xff})) // under minimum size, recorded malformed

	agg := b.Verify()
	require.NotEqual(t, ResultOK, agg)

	res := b.Results()
	require.Equal(t, ResultOK, res[0])
	require.Equal(t, ResultBelowThreshold, res[1])
	require.Equal(t, ResultMalformed, res[2])
	require.Equal(t, ResultMalformed, res[3])

	st := ctx.Stats()
	require.Equal(t, uint64(1), st.TotalVerified)
	require.Equal(t, uint64(3), st.TotalFailed)
}

func TestBatchAllValidCombinedPath(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{})

	b, err := ctx.NewBatch(16)
	require.NoError(t, err)
	defer b.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Add(f.proofWire(t, uint8(60+i), 0, nil)))
	}
	require.Equal(t, ResultOK, b.Verify())
	for _, r := range b.Results() {
		require.Equal(t, ResultOK, r)
	}
}

func TestBatchSealedAndReset(t *testing.T) {
	f := newFixture(t, 0)
	ctx := newTestContext(t, f, Config{})

	b, err := ctx.NewBatch(4)
	require.NoError(t, err)
	defer b.Close()

	wire := f.proofWire(t, 75, 0, nil)
	require.NoError(t, b.Add(wire))
	require.Equal(t, ResultOK, b.Verify())

	// Verify is idempotent and the batch is sealed against further adds.
	require.Equal(t, ResultOK, b.Verify())
	require.ErrorIs(t, b.Add(wire), ErrBatchSealed)
	require.Equal(t, uint64(1), ctx.Stats().TotalVerified)

	b.Reset()
	require.Zero(t, b.Len())
	require.NoError(t, b.Add(wire))
	require.Equal(t, ResultOK, b.Verify())
	require.Equal(t, uint64(2), ctx.Stats().TotalVerified)
}
