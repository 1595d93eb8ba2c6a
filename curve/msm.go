// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"github.com/tetsuo-ai/tetsuo-go/arena"
	"github.com/tetsuo-ai/tetsuo-go/field"
)

// msmWindow picks the Pippenger window width for a given input count.
func msmWindow(n int) int {
	switch {
	case n < 32:
		return 4
	case n < 256:
		return 6
	default:
		return 8
	}
}

// MSM computes sum(scalars[i] * points[i]) with a windowed bucket method.
// Bucket scratch lives in the arena and is released before returning, so a
// caller's checkpoints are unaffected. The slices must have equal length.
func MSM(a *arena.Arena, points []Point, scalars []field.Canonical) Point {
	if len(points) != len(scalars) {
		panic("curve: MSM input length mismatch")
	}
	if len(points) == 0 {
		return Infinity()
	}
	if len(points) == 1 {
		var r Point
		r.ScalarMul(&points[0], &scalars[0])
		return r
	}

	c := msmWindow(len(points))
	numWindows := (256 + c - 1) / c

	cp := a.Checkpoint()
	defer a.Restore(cp)
	buckets := arena.Make[Point](a, (1<<c)-1)

	result := Infinity()
	for w := numWindows - 1; w >= 0; w-- {
		if w != numWindows-1 {
			for i := 0; i < c; i++ {
				result.Double(&result)
			}
		}
		for i := range buckets {
			buckets[i] = Infinity()
		}
		for i := range points {
			d := windowDigit(&scalars[i], w*c, c)
			if d != 0 {
				buckets[d-1].Add(&buckets[d-1], &points[i])
			}
		}
		// Running suffix sums turn bucket j into weight j+1.
		running := Infinity()
		for i := len(buckets) - 1; i >= 0; i-- {
			running.Add(&running, &buckets[i])
			result.Add(&result, &running)
		}
	}
	return result
}

// windowDigit extracts width bits of s starting at bit pos.
func windowDigit(s *field.Canonical, pos, width int) uint64 {
	if pos >= 256 {
		return 0
	}
	limb := pos / 64
	shift := uint(pos % 64)
	d := s[limb] >> shift
	if int(shift)+width > 64 && limb+1 < field.Limbs {
		d |= s[limb+1] << (64 - shift)
	}
	return d & ((1 << uint(width)) - 1)
}
