// Package prover drives the STARK prover and verifier over the AIR
// defined in package air: turning an admitted MessageChain's trace into
// a proof, and checking a proof against a chain's public inputs.
package prover

// ProofOptions is the immutable configuration a MessageProver runs
// with. NumQueries, BlowupFactor, GrindingFactor and FRIMaxRemainderSize
// are embedded in the proof and replayed by the verifier, so changing
// any of them changes what verifying a proof checks. FieldExtension is
// carried but not read by the prover or verifier, and FRIFoldingFactor
// is only checked to be a power of two (every FRI fold is binary).
type ProofOptions struct {
	NumQueries          int
	BlowupFactor        int
	GrindingFactor      uint32
	FieldExtension      string
	FRIFoldingFactor    int
	FRIMaxRemainderSize int
}

// DefaultProofOptions returns the reference configuration: 54 queries,
// blowup 16, 16 bits of grinding, no field extension, FRI folding
// factor 4, remainder capped at 31 codeword entries.
func DefaultProofOptions() ProofOptions {
	return ProofOptions{
		NumQueries:          54,
		BlowupFactor:        16,
		GrindingFactor:      16,
		FieldExtension:      "none",
		FRIFoldingFactor:    4,
		FRIMaxRemainderSize: 31,
	}
}
