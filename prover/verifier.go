package prover

import (
	"fmt"

	zkchat "github.com/kysee/zk-chat"
	"github.com/kysee/zk-chat/air"
	"github.com/kysee/zk-chat/zk"
)

// VerifyProof decodes proofBytes and checks it against pub, returning
// nil only if every commitment, query opening, and FRI fold is
// consistent with the transcript the proof itself implies.
func VerifyProof(proofBytes []byte, pub air.PublicInputs) error {
	proof, err := UnmarshalProof(proofBytes)
	if err != nil {
		return zkchat.NewProofGenerationError("deserialization", err)
	}

	if proof.TraceLength <= 0 || proof.TraceLength&(proof.TraceLength-1) != 0 {
		return zkchat.NewProofGenerationError("verification", fmt.Errorf("trace length %d is not a power of two", proof.TraceLength))
	}
	if proof.TraceLength <= pub.LastMessageRow() {
		return zkchat.NewProofGenerationError("verification", fmt.Errorf("trace length %d too short for message count %d", proof.TraceLength, pub.MessageCount))
	}

	evalDomainSize := proof.TraceLength * proof.Options.BlowupFactor
	evalRoot, err := zk.TwoAdicRootOfUnity(log2(evalDomainSize))
	if err != nil {
		return zkchat.NewProofGenerationError("verification", err)
	}
	traceRoot, err := zk.TwoAdicRootOfUnity(log2(proof.TraceLength))
	if err != nil {
		return zkchat.NewProofGenerationError("verification", err)
	}

	transcript := zk.NewTranscript(transcriptLabel)
	transcript.AbsorbElements(pub.ToElements())
	transcript.AbsorbDigest(proof.TraceRoot)
	coeffs := transcript.DrawElements(numConstraints)
	transcript.AbsorbDigest(proof.CompositionRoot)

	totalFolds := zk.FRIFoldCount(evalDomainSize, proof.Options.FRIMaxRemainderSize)
	expectedLayers := 0
	if totalFolds > 0 {
		expectedLayers = totalFolds - 1
	}
	if len(proof.FRILayerRoots) != expectedLayers {
		return zkchat.NewProofGenerationError("verification", fmt.Errorf("expected %d FRI layer roots, got %d", expectedLayers, len(proof.FRILayerRoots)))
	}

	challenges := make([]zk.BaseElement, totalFolds)
	for m := 0; m < totalFolds; m++ {
		challenges[m] = transcript.DrawElement()
		if m < totalFolds-1 {
			transcript.AbsorbDigest(proof.FRILayerRoots[m])
		}
	}

	if !zk.VerifyGrind(transcript.State(), proof.GrindNonce, proof.Options.GrindingFactor) {
		return zkchat.NewProofGenerationError("verification", fmt.Errorf("grinding nonce does not meet %d bits", proof.Options.GrindingFactor))
	}
	var nonceBuf [8]byte
	putUint64LE(nonceBuf[:], proof.GrindNonce)
	transcript.Absorb(nonceBuf[:])

	positions := transcript.DrawQueryPositions(proof.Options.NumQueries, evalDomainSize)
	if len(positions) != len(proof.Queries) {
		return zkchat.NewProofGenerationError("verification", fmt.Errorf("expected %d query openings, got %d", len(positions), len(proof.Queries)))
	}

	assertions := air.BoundaryAssertions(pub)
	blowupFactor := proof.Options.BlowupFactor

	for i, raw := range positions {
		pos := avoidTraceAlignedPosition(raw, blowupFactor, evalDomainSize)
		q := proof.Queries[i]
		if q.Position != pos {
			return zkchat.NewProofGenerationError("verification", fmt.Errorf("query %d opened at position %d, expected %d", i, q.Position, pos))
		}

		if err := verifyQuery(q, proof, pub, assertions, coeffs, challenges, evalRoot, traceRoot, evalDomainSize, blowupFactor, proof.TraceLength); err != nil {
			return zkchat.NewProofGenerationError("verification", fmt.Errorf("query %d: %w", i, err))
		}
	}

	return nil
}

func verifyQuery(
	q QueryOpening,
	proof *Proof,
	pub air.PublicInputs,
	assertions [air.NumBoundaryAssertions]air.Assertion,
	coeffs []zk.BaseElement,
	challenges []zk.BaseElement,
	evalRoot, traceRoot zk.BaseElement,
	evalDomainSize, blowupFactor, traceLength int,
) error {
	nextPos := (q.Position + blowupFactor) % evalDomainSize

	if !zk.VerifyMerklePath(proof.TraceRoot, zk.HashRow(q.TraceCurrent[:]), q.Position, q.TraceCurrentPath) {
		return fmt.Errorf("trace current opening")
	}
	if !zk.VerifyMerklePath(proof.TraceRoot, zk.HashRow(q.TraceNext[:]), nextPos, q.TraceNextPath) {
		return fmt.Errorf("trace next opening")
	}
	if !zk.VerifyMerklePath(proof.CompositionRoot, zk.HashRow([]zk.BaseElement{q.CompositionValue}), q.Position, q.CompositionPath) {
		return fmt.Errorf("composition opening")
	}

	frame := air.Frame{Current: q.TraceCurrent, Next: q.TraceNext}
	transition := air.EvaluateTransition(frame)

	x := evalRoot.Pow(uint64(q.Position))
	zTrace := x.Pow(uint64(traceLength)).Sub(zk.One())
	if zTrace.IsZero() {
		return fmt.Errorf("query position is trace-aligned")
	}
	zTraceInv := zTrace.Inverse()

	// Transition constraints are only required to vanish on the trace
	// domain's first traceLength-1 points, matching the wraparound
	// exemption buildComposition applies: 1/[(x^n-1)/(x-lastRoot)] is
	// (x-lastRoot)/(x^n-1).
	lastRoot := traceRoot.Pow(uint64(traceLength - 1))
	transitionZInv := zTraceInv.Mul(x.Sub(lastRoot))

	expectedComposition := zk.Zero()
	for k := 0; k < air.NumTransitionConstraints; k++ {
		quotient := transition[k].Mul(transitionZInv)
		expectedComposition = expectedComposition.Add(coeffs[k].Mul(quotient))
	}

	for k, a := range assertions {
		boundaryPoint := traceRoot.Pow(uint64(a.Row))
		zBoundary := x.Sub(boundaryPoint)
		if zBoundary.IsZero() {
			return fmt.Errorf("query position coincides with boundary row")
		}
		residual := q.TraceCurrent[a.Column].Sub(a.Value)
		quotient := residual.Mul(zBoundary.Inverse())
		expectedComposition = expectedComposition.Add(coeffs[air.NumTransitionConstraints+k].Mul(quotient))
	}

	if !expectedComposition.Equal(q.CompositionValue) {
		return fmt.Errorf("composition mismatch")
	}

	return verifyFRIChain(q, proof, challenges, evalRoot, evalDomainSize)
}

// verifyFRIChain checks every fold in q.FRIChain ties the committed
// composition codeword down to the proof's remainder, consistently
// with the independently re-derived challenges. At each level the
// query position is reduced by that level's own half-size (matching
// how the prover opened it), and the domain point used in the fold
// formula is the evaluation-domain generator raised to 2^level * idx,
// per the nesting property TwoAdicRootOfUnity guarantees.
func verifyFRIChain(q QueryOpening, proof *Proof, challenges []zk.BaseElement, evalRoot zk.BaseElement, evalDomainSize int) error {
	totalFolds := len(challenges)
	if len(q.FRIChain) != totalFolds {
		return fmt.Errorf("fri chain length mismatch")
	}

	levelSize := evalDomainSize
	idx := q.Position % (levelSize / 2)

	for m := 0; m < totalFolds; m++ {
		half := levelSize / 2

		root := proof.CompositionRoot
		if m > 0 {
			root = proof.FRILayerRoots[m-1]
		}
		if !zk.VerifyMerklePath(root, zk.HashRow([]zk.BaseElement{q.FRIChain[m].Value}), idx, q.FRIChain[m].ValuePath) {
			return fmt.Errorf("fri layer %d value opening", m)
		}
		if !zk.VerifyMerklePath(root, zk.HashRow([]zk.BaseElement{q.FRIChain[m].PairValue}), idx+half, q.FRIChain[m].PairValuePath) {
			return fmt.Errorf("fri layer %d pair opening", m)
		}

		if m == 0 {
			var tieIn zk.BaseElement
			if q.Position < half {
				tieIn = q.FRIChain[0].Value
			} else {
				tieIn = q.FRIChain[0].PairValue
			}
			if !tieIn.Equal(q.CompositionValue) {
				return fmt.Errorf("fri chain does not tie into the opened composition value")
			}
		}

		exp := uint64(1) << uint(m)
		levelPoint := evalRoot.Pow(exp * uint64(idx))

		var expectedNext zk.BaseElement
		nextIdx := idx
		if m < totalFolds-1 {
			nextHalf := half / 2
			nextIdx = idx % nextHalf
			if idx < nextHalf {
				expectedNext = q.FRIChain[m+1].Value
			} else {
				expectedNext = q.FRIChain[m+1].PairValue
			}
		} else {
			if idx >= len(proof.FRIRemainder) {
				return fmt.Errorf("fri remainder index out of range")
			}
			expectedNext = proof.FRIRemainder[idx]
		}

		if !zk.VerifyFRILayerFold(levelPoint, q.FRIChain[m].Value, q.FRIChain[m].PairValue, challenges[m], expectedNext) {
			return fmt.Errorf("fri fold %d does not verify", m)
		}

		levelSize = half
		idx = nextIdx
	}

	return nil
}
