package prover

import (
	"fmt"
	"math/bits"

	zkchat "github.com/kysee/zk-chat"
	"github.com/kysee/zk-chat/air"
	"github.com/kysee/zk-chat/zk"
)

// transcriptLabel domain-separates this protocol's Fiat-Shamir
// transcript from any other use of zk.Transcript in the module.
const transcriptLabel = "zkchat-message-chain-v1"

// numConstraints is the width of the composition: one coefficient per
// transition constraint plus one per boundary assertion.
const numConstraints = air.NumTransitionConstraints + air.NumBoundaryAssertions

// MessageProver builds STARK proofs over a message chain's trace.
type MessageProver struct {
	opts ProofOptions
}

// NewMessageProver returns a prover configured with DefaultProofOptions.
func NewMessageProver() *MessageProver {
	return &MessageProver{opts: DefaultProofOptions()}
}

// NewMessageProverWithOptions returns a prover configured with opts.
func NewMessageProverWithOptions(opts ProofOptions) *MessageProver {
	return &MessageProver{opts: opts}
}

// Prove validates messages, builds their trace, and returns a
// gob-encoded Proof attesting that the trace satisfies the AIR.
func (mp *MessageProver) Prove(messages []zkchat.Message) ([]byte, error) {
	bytes, _, err := mp.ProveWithPublicInputs(messages)
	return bytes, err
}

// ProveWithPublicInputs is Prove plus the PublicInputs the resulting
// proof attests to, built from the same trace so callers that need
// both never pay for building the trace twice.
func (mp *MessageProver) ProveWithPublicInputs(messages []zkchat.Message) ([]byte, air.PublicInputs, error) {
	if err := validateMessages(messages); err != nil {
		return nil, air.PublicInputs{}, err
	}

	trace := air.BuildTrace(messages)
	traceLength := trace.Length()
	pub := air.GetPublicInputs(trace, len(messages))

	proof, err := mp.proveTrace(trace, traceLength, pub)
	if err != nil {
		return nil, air.PublicInputs{}, zkchat.NewProofGenerationError("prove", err)
	}

	bytes, err := proof.Marshal()
	if err != nil {
		return nil, air.PublicInputs{}, zkchat.NewProofGenerationError("serialize", err)
	}
	return bytes, pub, nil
}

// GetPubInputs derives the public inputs a trace actually satisfies,
// mirroring air.GetPublicInputs for callers that already hold a trace.
func GetPubInputs(trace air.Trace, messageCount int) air.PublicInputs {
	return air.GetPublicInputs(trace, messageCount)
}

func validateMessages(messages []zkchat.Message) error {
	if len(messages) == 0 {
		return zkchat.ErrInvalidMessageHash
	}
	for i, m := range messages {
		if !m.VerifyHash() {
			return zkchat.ErrInvalidMessageHash
		}
		if i > 0 && m.Timestamp <= messages[i-1].Timestamp {
			return zkchat.ErrInvalidTimestamp
		}
	}
	return nil
}

func log2(n int) uint { return uint(bits.TrailingZeros(uint(n))) }

func (mp *MessageProver) proveTrace(trace air.Trace, traceLength int, pub air.PublicInputs) (*Proof, error) {
	evalDomainSize := traceLength * mp.opts.BlowupFactor
	evalDomain, err := zk.NewDomain(evalDomainSize)
	if err != nil {
		return nil, fmt.Errorf("build evaluation domain: %w", err)
	}

	// Step 3: low-degree extend every trace column onto the evaluation domain.
	ldeColumns := make([][]zk.BaseElement, air.TraceWidth)
	for c := 0; c < air.TraceWidth; c++ {
		lde, err := zk.LDE(trace[c], mp.opts.BlowupFactor)
		if err != nil {
			return nil, fmt.Errorf("lde column %d: %w", c, err)
		}
		ldeColumns[c] = lde
	}

	// Step 4: commit to the trace LDE, row-wise.
	traceRows := make([][]zk.BaseElement, evalDomainSize)
	for i := 0; i < evalDomainSize; i++ {
		row := make([]zk.BaseElement, air.TraceWidth)
		for c := 0; c < air.TraceWidth; c++ {
			row[c] = ldeColumns[c][i]
		}
		traceRows[i] = row
	}
	traceTree, err := zk.NewMerkleTree(traceRows)
	if err != nil {
		return nil, fmt.Errorf("commit trace: %w", err)
	}

	// Step 5: draw composition coefficients from the transcript.
	transcript := zk.NewTranscript(transcriptLabel)
	transcript.AbsorbElements(pub.ToElements())
	transcript.AbsorbDigest(traceTree.Root())
	coeffs := transcript.DrawElements(numConstraints)

	// Step 6: evaluate constraints, divide by vanishing polynomials,
	// combine into the composition codeword, and commit to it.
	compositionEvals, err := mp.buildComposition(ldeColumns, evalDomainSize, traceLength, pub, coeffs)
	if err != nil {
		return nil, fmt.Errorf("build composition: %w", err)
	}
	compRows := make([][]zk.BaseElement, evalDomainSize)
	for i, v := range compositionEvals {
		compRows[i] = []zk.BaseElement{v}
	}
	compTree, err := zk.NewMerkleTree(compRows)
	if err != nil {
		return nil, fmt.Errorf("commit composition: %w", err)
	}
	transcript.AbsorbDigest(compTree.Root())

	// Step 7: FRI-fold the composition codeword.
	friProof, err := zk.FRICommit(compositionEvals, evalDomain, mp.opts.FRIFoldingFactor, mp.opts.FRIMaxRemainderSize, transcript)
	if err != nil {
		return nil, fmt.Errorf("fri commit: %w", err)
	}

	// Step 8: grind a proof-of-work nonce against the post-FRI transcript.
	nonce := transcript.Grind(mp.opts.GrindingFactor)
	var nonceBuf [8]byte
	putUint64LE(nonceBuf[:], nonce)
	transcript.Absorb(nonceBuf[:])

	// Step 9: draw query positions and open every committed structure.
	positions := transcript.DrawQueryPositions(mp.opts.NumQueries, evalDomainSize)
	queries := make([]QueryOpening, len(positions))
	for i, raw := range positions {
		pos := avoidTraceAlignedPosition(raw, mp.opts.BlowupFactor, evalDomainSize)
		queries[i] = mp.openQuery(pos, ldeColumns, traceTree, compositionEvals, compTree, friProof, mp.opts.BlowupFactor)
	}

	layerRoots := make([][32]byte, len(friProof.Layers))
	for i, l := range friProof.Layers {
		layerRoots[i] = l.Tree.Root()
	}

	return &Proof{
		Options:         mp.opts,
		TraceLength:     traceLength,
		MessageCount:    pub.MessageCount,
		TraceRoot:       traceTree.Root(),
		CompositionRoot: compTree.Root(),
		FRILayerRoots:   layerRoots,
		FRIRemainder:    friProof.Remainder,
		GrindNonce:      nonce,
		Queries:         queries,
	}, nil
}

// avoidTraceAlignedPosition nudges a drawn query position off any
// multiple of blowupFactor: those are exactly the points where the
// transition-constraint vanishing polynomial is zero, which would
// divide the constraint residual by zero instead of sampling it.
func avoidTraceAlignedPosition(position, blowupFactor, domainSize int) int {
	if position%blowupFactor == 0 {
		return (position + 1) % domainSize
	}
	return position
}

func (mp *MessageProver) openQuery(
	pos int,
	ldeColumns [][]zk.BaseElement,
	traceTree *zk.MerkleTree,
	compositionEvals []zk.BaseElement,
	compTree *zk.MerkleTree,
	friProof *zk.FRIProof,
	blowupFactor int,
) QueryOpening {
	evalDomainSize := len(compositionEvals)
	nextPos := (pos + blowupFactor) % evalDomainSize

	var current, next [air.TraceWidth]zk.BaseElement
	for c := 0; c < air.TraceWidth; c++ {
		current[c] = ldeColumns[c][pos]
		next[c] = ldeColumns[c][nextPos]
	}
	_, currentPath := traceTree.Prove(pos)
	_, nextPath := traceTree.Prove(nextPos)

	_, compPath := compTree.Prove(pos)

	var chain []zk.FRIOpening
	if len(compositionEvals) > len(friProof.Remainder) {
		// At least one fold happened: the composition codeword itself
		// is the from-array for fold 0, then each committed layer is
		// the from-array for the next fold.
		chain = make([]zk.FRIOpening, len(friProof.Layers)+1)
		chain[0] = zk.OpenFoldPair(compositionEvals, compTree, pos)
		for k := 1; k <= len(friProof.Layers); k++ {
			chain[k] = friProof.Layers[k-1].OpenAt(pos)
		}
	}

	return QueryOpening{
		Position:         pos,
		TraceCurrent:     current,
		TraceCurrentPath: currentPath,
		TraceNext:        next,
		TraceNextPath:    nextPath,
		CompositionValue: compositionEvals[pos],
		CompositionPath:  compPath,
		FRIChain:         chain,
	}
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
