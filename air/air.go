// Package air defines the Algebraic Intermediate Representation for
// message-chain proofs: the 19-column trace layout, the transition
// constraints and boundary assertions that bind it, and the public
// inputs the statement is proven against.
package air

import (
	"encoding/json"

	"github.com/kysee/zk-chat/zk"
)

// TraceWidth is the number of columns in the execution trace. Each row
// is one message step (real or padded).
const TraceWidth = 19

// MinTraceLength is the minimum number of rows a trace is padded to
// before length normalization rounds it up to a power of two for the
// STARK backend (see BuildTrace).
const MinTraceLength = 8

// Column indices, per the trace layout.
const (
	ColPrevChainHash0 = 0 // 0..3: prev_chain_hash (4 elements, truncated)
	ColChainHash0     = 4 // 4..7: chain_hash after this message (4 elements, truncated)
	ColPrevTimestamp  = 8
	ColTimestamp      = 9
	ColSenderID       = 10
	ColMessageID      = 11
	ColSenderIDDup    = 12
	ColTimestampDup   = 13
	ColContent0       = 14 // 14..17: packed content (4 elements)
	ColPartialHash    = 18
)

// NumTransitionConstraints is the fixed count of transition constraints
// the AIR evaluates: 4 hash-chaining + 1 timestamp-chaining + 1 cubic
// partial-hash recurrence.
const NumTransitionConstraints = 6

// NumBoundaryAssertions is the fixed count of boundary assertions: 4
// pinning the initial hash at row 0, 4 pinning the final hash at the
// last real message's row.
const NumBoundaryAssertions = 8

// PublicInputs is the statement proven/verified: the chain hash before
// and after the scope of messages, and how many real (non-padded)
// messages are in scope.
type PublicInputs struct {
	InitialHash  [32]byte `json:"initial_hash"`
	FinalHash    [32]byte `json:"final_hash"`
	MessageCount uint64   `json:"message_count"`
}

// publicInputsJSON mirrors the wire shape with byte arrays rendered as
// JSON number arrays, matching spec's {initial_hash: [u8;32], ...}.
type publicInputsJSON struct {
	InitialHash  [32]byte `json:"initial_hash"`
	FinalHash    [32]byte `json:"final_hash"`
	MessageCount uint64   `json:"message_count"`
}

// MarshalJSON renders PublicInputs with hash fields as byte arrays.
func (p PublicInputs) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicInputsJSON(p))
}

// UnmarshalJSON parses the {initial_hash, final_hash, message_count} shape.
func (p *PublicInputs) UnmarshalJSON(data []byte) error {
	var wire publicInputsJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = PublicInputs(wire)
	return nil
}

// ToElements encodes the public inputs into field elements the way the
// AIR and the Fiat-Shamir transcript expect: initial_hash elements,
// then final_hash elements, then message_count as a single element.
func (p PublicInputs) ToElements() []zk.BaseElement {
	initial := zk.HashToElements(p.InitialHash)
	final := zk.HashToElements(p.FinalHash)
	out := make([]zk.BaseElement, 0, 9)
	out = append(out, initial[:]...)
	out = append(out, final[:]...)
	out = append(out, zk.FromUint64(p.MessageCount))
	return out
}

// LastMessageRow returns the trace row index of the last real message,
// i.e. MessageCount-1. Boundary assertions on chain_hash are pinned
// here, not at the (possibly larger, padded) trace length.
func (p PublicInputs) LastMessageRow() int {
	if p.MessageCount == 0 {
		return 0
	}
	return int(p.MessageCount) - 1
}

// Frame holds the current and next rows of the trace, the unit the
// transition constraints are evaluated over.
type Frame struct {
	Current [TraceWidth]zk.BaseElement
	Next    [TraceWidth]zk.BaseElement
}

// EvaluateTransition computes the 6 transition-constraint residuals for
// a frame. All residuals must be zero on a valid execution trace:
//
//	r[0..3] = next[0..3] - current[4..7]   (chain-hash linking)
//	r[4]    = next[8] - current[9]          (timestamp linking)
//	r[5]    = next[18] - (current[18]^3 + sum(next[11..17]))
func EvaluateTransition(frame Frame) [NumTransitionConstraints]zk.BaseElement {
	var result [NumTransitionConstraints]zk.BaseElement

	for i := 0; i < 4; i++ {
		result[i] = frame.Next[i].Sub(frame.Current[ColChainHash0+i])
	}

	result[4] = frame.Next[ColPrevTimestamp].Sub(frame.Current[ColTimestamp])

	sumNextInputs := frame.Next[ColMessageID].
		Add(frame.Next[ColSenderIDDup]).
		Add(frame.Next[ColTimestampDup]).
		Add(frame.Next[ColContent0]).
		Add(frame.Next[ColContent0+1]).
		Add(frame.Next[ColContent0+2]).
		Add(frame.Next[ColContent0+3])

	result[5] = frame.Next[ColPartialHash].Sub(frame.Current[ColPartialHash].Cube().Add(sumNextInputs))

	return result
}

// Assertion pins a trace column to a fixed value at a fixed row.
type Assertion struct {
	Column int
	Row    int
	Value  zk.BaseElement
}

// BoundaryAssertions returns the 8 assertions the AIR checks: the
// initial-hash elements at row 0 of columns 0..3, and the final-hash
// elements at PublicInputs.LastMessageRow() of columns 4..7.
func BoundaryAssertions(pub PublicInputs) [NumBoundaryAssertions]Assertion {
	var out [NumBoundaryAssertions]Assertion
	initial := zk.HashToElements(pub.InitialHash)
	final := zk.HashToElements(pub.FinalHash)
	lastRow := pub.LastMessageRow()

	for i := 0; i < 4; i++ {
		out[i] = Assertion{Column: ColPrevChainHash0 + i, Row: 0, Value: initial[i]}
	}
	for i := 0; i < 4; i++ {
		out[4+i] = Assertion{Column: ColChainHash0 + i, Row: lastRow, Value: final[i]}
	}
	return out
}

// GetPublicInputs derives the PublicInputs a trace actually satisfies:
// initial_hash is always zero (the scope begins at an empty chain),
// final_hash is read off columns 4..7 of the last real message's row,
// and message_count is that row index plus one.
func GetPublicInputs(trace Trace, messageCount int) PublicInputs {
	lastRow := messageCount - 1
	if lastRow < 0 {
		lastRow = 0
	}
	var final [4]zk.BaseElement
	for i := 0; i < 4; i++ {
		final[i] = trace[ColChainHash0+i][lastRow]
	}
	return PublicInputs{
		InitialHash:  [32]byte{},
		FinalHash:    zk.ElementsToHash(final),
		MessageCount: uint64(messageCount),
	}
}
