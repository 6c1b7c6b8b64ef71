package zk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFRICommitFoldsToRemainder(t *testing.T) {
	const domainSize = 64
	domain, err := NewDomain(domainSize)
	require.NoError(t, err)

	// A constant codeword is trivially low-degree, so it folds down
	// cleanly without needing a real composition polynomial.
	codeword := make([]BaseElement, domainSize)
	for i := range codeword {
		codeword[i] = FromUint64(7)
	}

	transcript := NewTranscript("fri-test")
	proof, err := FRICommit(codeword, domain, 4, 7, transcript)
	require.NoError(t, err)

	expectedFolds := FRIFoldCount(domainSize, 7)
	require.Equal(t, expectedFolds-1, len(proof.Layers))
	require.LessOrEqual(t, len(proof.Remainder), 7)

	for _, v := range proof.Remainder {
		require.True(t, v.Equal(FromUint64(7)))
	}
}

func TestFoldOnceAndVerifyFRILayerFoldAgree(t *testing.T) {
	const domainSize = 16
	domain, err := NewDomain(domainSize)
	require.NoError(t, err)

	codeword := make([]BaseElement, domainSize)
	for i := range codeword {
		codeword[i] = FromUint64(uint64(i + 1))
	}

	challenge := FromUint64(3)
	next, _ := foldOnce(codeword, domain, challenge)

	half := domainSize / 2
	for i := 0; i < half; i++ {
		x := domain.Points[i]
		ok := VerifyFRILayerFold(x, codeword[i], codeword[i+half], challenge, next[i])
		require.True(t, ok)
	}
}

func TestFRIFoldCount(t *testing.T) {
	require.Equal(t, 0, FRIFoldCount(8, 8))
	require.Equal(t, 1, FRIFoldCount(16, 8))
	require.Equal(t, 4, FRIFoldCount(64, 7))
}
