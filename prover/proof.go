package prover

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/kysee/zk-chat/air"
	"github.com/kysee/zk-chat/zk"
)

// QueryOpening is everything the verifier needs at one sampled
// evaluation-domain position: the trace row there and at the next
// cyclic row (both authenticated against the trace commitment), the
// composition value (authenticated against the composition
// commitment), and the chain of FRI fold openings down to the
// remainder.
type QueryOpening struct {
	Position int

	TraceCurrent     [air.TraceWidth]zk.BaseElement
	TraceCurrentPath zk.MerklePath
	TraceNext        [air.TraceWidth]zk.BaseElement
	TraceNextPath    zk.MerklePath

	CompositionValue zk.BaseElement
	CompositionPath  zk.MerklePath

	FRIChain []zk.FRIOpening
}

// Proof is the fully self-contained, gob-encoded record a verifier
// checks: everything needed to replay the Fiat-Shamir transcript and
// re-open the claimed commitments is here except the public inputs
// themselves, which the caller supplies independently.
type Proof struct {
	Options      ProofOptions
	TraceLength  int
	MessageCount uint64

	TraceRoot       [32]byte
	CompositionRoot [32]byte

	FRILayerRoots [][32]byte
	FRIRemainder  []zk.BaseElement

	GrindNonce uint64

	Queries []QueryOpening
}

// Marshal gob-encodes the proof.
func (p *Proof) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("prover: encode proof: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalProof gob-decodes proof bytes produced by Proof.Marshal.
func UnmarshalProof(data []byte) (*Proof, error) {
	var p Proof
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, fmt.Errorf("prover: decode proof: %w", err)
	}
	return &p, nil
}
