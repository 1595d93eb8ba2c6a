// Copyright (C) 2025, Tetsuo AI, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verify

import "errors"

// Result is the outcome of verifying a single proof. Failures are
// discriminants, not errors; only structural misuse of the API (nil
// context, full batch) surfaces as error values.
type Result uint8

const (
	// ResultOK means the proof is authentic and satisfies policy.
	ResultOK Result = iota

	// ResultMalformed covers bad version or type, truncated or oversized
	// records, invalid curve points, and a failed pairing check.
	ResultMalformed

	// ResultBelowThreshold means the proof is authentic but its claimed
	// threshold is under the context's minimum.
	ResultBelowThreshold

	// ResultExpired means the proof is authentic but older than the
	// context's maximum proof age.
	ResultExpired

	// ResultBlacklisted means the proof is authentic but the agent failed
	// the blacklist exclusion check.
	ResultBlacklisted
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultMalformed:
		return "malformed"
	case ResultBelowThreshold:
		return "below_threshold"
	case ResultExpired:
		return "expired"
	case ResultBlacklisted:
		return "blacklisted"
	default:
		return "unknown"
	}
}

var (
	// ErrBatchFull is returned by Batch.Add once capacity is reached.
	ErrBatchFull = errors.New("verify: batch capacity exceeded")

	// ErrBatchCapacity is returned by NewBatch for a non-positive or
	// oversized capacity.
	ErrBatchCapacity = errors.New("verify: invalid batch capacity")

	// ErrNoVerifyingKey is returned by NewContext when no verification key
	// bytes are supplied.
	ErrNoVerifyingKey = errors.New("verify: verification key required")
)
