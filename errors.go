package zkchat

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to collaborators. Input-violation errors are
// returned unmodified with no retry or fallback; the chain/prover state
// is unchanged on any such failure.
var (
	ErrInvalidMessageHash      = errors.New("zkchat: invalid message hash")
	ErrInvalidTimestamp        = errors.New("zkchat: invalid timestamp sequence")
	ErrDuplicateMessageID      = errors.New("zkchat: duplicate message id")
	ErrInvalidSender           = errors.New("zkchat: invalid sender id")
	ErrProofVerificationFailed = errors.New("zkchat: proof verification failed")
)

// ProofGenerationError wraps a cryptographic backend failure (proving or
// verifying) with a human-readable reason. It never carries secret
// state: the reason string describes the stage that failed, not trace
// or witness values.
type ProofGenerationError struct {
	Reason string
}

func (e *ProofGenerationError) Error() string {
	return fmt.Sprintf("zkchat: proof generation error: %s", e.Reason)
}

// NewProofGenerationError builds a ProofGenerationError from a backend
// failure, formatted the way fmt.Errorf would but without wrapping (the
// backend error is a cryptographic library detail, not a chain to walk).
func NewProofGenerationError(stage string, err error) *ProofGenerationError {
	return &ProofGenerationError{Reason: fmt.Sprintf("%s: %v", stage, err)}
}
