package prover

import (
	"fmt"

	"github.com/kysee/zk-chat/air"
	"github.com/kysee/zk-chat/zk"
)

// buildComposition evaluates every transition constraint and boundary
// assertion across the full evaluation domain, divides each by its
// vanishing polynomial, and folds the fourteen resulting quotients into
// one codeword under the drawn coefficients. Division happens in
// coefficient space (interpolate, divide polynomials exactly, evaluate
// back) rather than pointwise, since the vanishing polynomials are
// exactly zero at the points the AIR actually constrains.
func (mp *MessageProver) buildComposition(
	ldeColumns [][]zk.BaseElement,
	evalDomainSize, traceLength int,
	pub air.PublicInputs,
	coeffs []zk.BaseElement,
) ([]zk.BaseElement, error) {
	blowupFactor := evalDomainSize / traceLength
	traceRoot, err := zk.TwoAdicRootOfUnity(log2(traceLength))
	if err != nil {
		return nil, fmt.Errorf("trace domain root: %w", err)
	}

	residuals := make([][]zk.BaseElement, numConstraints)
	for k := range residuals {
		residuals[k] = make([]zk.BaseElement, evalDomainSize)
	}

	for i := 0; i < evalDomainSize; i++ {
		var frame air.Frame
		nextI := (i + blowupFactor) % evalDomainSize
		for c := 0; c < air.TraceWidth; c++ {
			frame.Current[c] = ldeColumns[c][i]
			frame.Next[c] = ldeColumns[c][nextI]
		}
		transition := air.EvaluateTransition(frame)
		for k := 0; k < air.NumTransitionConstraints; k++ {
			residuals[k][i] = transition[k]
		}
	}

	assertions := air.BoundaryAssertions(pub)
	for k, a := range assertions {
		idx := air.NumTransitionConstraints + k
		for i := 0; i < evalDomainSize; i++ {
			residuals[idx][i] = ldeColumns[a.Column][i].Sub(a.Value)
		}
	}

	composition := make([]zk.BaseElement, evalDomainSize)
	for k := 0; k < numConstraints; k++ {
		quotientEvals, err := quotientEvaluations(residuals[k], evalDomainSize, traceLength, traceRoot, k, assertions)
		if err != nil {
			return nil, fmt.Errorf("constraint %d quotient: %w", k, err)
		}
		for i := 0; i < evalDomainSize; i++ {
			composition[i] = composition[i].Add(coeffs[k].Mul(quotientEvals[i]))
		}
	}

	return composition, nil
}

// quotientEvaluations divides one constraint's residual evaluations by
// its vanishing polynomial and returns the quotient re-evaluated on the
// same domain. Transition constraints (k < air.NumTransitionConstraints)
// vanish on every trace-domain point except the cyclic wraparound;
// boundary assertions vanish only at their own asserted row.
func quotientEvaluations(
	residualEvals []zk.BaseElement,
	evalDomainSize, traceLength int,
	traceRoot zk.BaseElement,
	k int,
	assertions [air.NumBoundaryAssertions]air.Assertion,
) ([]zk.BaseElement, error) {
	residualCoeffs, err := zk.InverseNTT(residualEvals)
	if err != nil {
		return nil, fmt.Errorf("interpolate residual: %w", err)
	}

	var quotientCoeffs []zk.BaseElement
	if k < air.NumTransitionConstraints {
		// Frame.Next wraps cyclically from the trace's last row back to
		// row 0, but BuildTrace never makes that wraparound satisfy the
		// transition rules (row 0 starts a fresh chain). So the
		// transition residual only vanishes on the trace domain's first
		// traceLength-1 points, not the last one; multiplying by
		// (x - lastRoot) extends it to vanish everywhere before dividing
		// by the full domain vanishing polynomial.
		lastRoot := traceRoot.Pow(uint64(traceLength - 1))
		extended := zk.MultiplyByLinear(residualCoeffs, lastRoot)
		quotientCoeffs = zk.DivideByVanishing(extended, traceLength)
	} else {
		a := assertions[k-air.NumTransitionConstraints]
		boundaryPoint := traceRoot.Pow(uint64(a.Row))
		quotientCoeffs = zk.DivideByLinear(residualCoeffs, boundaryPoint)
	}

	padded := make([]zk.BaseElement, evalDomainSize)
	copy(padded, quotientCoeffs)
	return zk.NTT(padded)
}
