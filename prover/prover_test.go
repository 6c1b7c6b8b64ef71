package prover

import (
	"testing"

	zkchat "github.com/kysee/zk-chat"
	"github.com/kysee/zk-chat/air"
	"github.com/stretchr/testify/require"
)

func smallOptions() ProofOptions {
	opts := DefaultProofOptions()
	opts.NumQueries = 6
	opts.BlowupFactor = 8
	opts.GrindingFactor = 4
	opts.FRIMaxRemainderSize = 7
	return opts
}

func TestProveThenVerifyRoundTrips(t *testing.T) {
	messages := []zkchat.Message{
		zkchat.NewMessage(1, 10, "hello", 1000),
		zkchat.NewMessage(2, 10, "there", 1001),
		zkchat.NewMessage(3, 20, "friend", 1002),
	}

	mp := NewMessageProverWithOptions(smallOptions())
	proofBytes, err := mp.Prove(messages)
	require.NoError(t, err)
	require.NotEmpty(t, proofBytes)

	trace := air.BuildTrace(messages)
	pub := GetPubInputs(trace, len(messages))

	require.NoError(t, VerifyProof(proofBytes, pub))
}

func TestProveRejectsEmptyBatch(t *testing.T) {
	mp := NewMessageProverWithOptions(smallOptions())
	_, err := mp.Prove(nil)
	require.ErrorIs(t, err, zkchat.ErrInvalidMessageHash)
}

func TestProveRejectsTamperedHash(t *testing.T) {
	m := zkchat.NewMessage(1, 10, "hello", 1000)
	m.Hash[0] ^= 0xFF

	mp := NewMessageProverWithOptions(smallOptions())
	_, err := mp.Prove([]zkchat.Message{m})
	require.ErrorIs(t, err, zkchat.ErrInvalidMessageHash)
}

func TestProveRejectsNonMonotonicTimestamps(t *testing.T) {
	messages := []zkchat.Message{
		zkchat.NewMessage(1, 10, "a", 1000),
		zkchat.NewMessage(2, 10, "b", 999),
	}
	mp := NewMessageProverWithOptions(smallOptions())
	_, err := mp.Prove(messages)
	require.ErrorIs(t, err, zkchat.ErrInvalidTimestamp)
}

func TestVerifyRejectsWrongPublicInputs(t *testing.T) {
	messages := []zkchat.Message{
		zkchat.NewMessage(1, 10, "hello", 1000),
		zkchat.NewMessage(2, 10, "there", 1001),
	}
	mp := NewMessageProverWithOptions(smallOptions())
	proofBytes, err := mp.Prove(messages)
	require.NoError(t, err)

	trace := air.BuildTrace(messages)
	pub := GetPubInputs(trace, len(messages))
	pub.MessageCount++ // now claims a different statement

	require.Error(t, VerifyProof(proofBytes, pub))
}

func TestVerifyRejectsCorruptedProof(t *testing.T) {
	messages := []zkchat.Message{
		zkchat.NewMessage(1, 10, "hello", 1000),
		zkchat.NewMessage(2, 10, "there", 1001),
	}
	mp := NewMessageProverWithOptions(smallOptions())
	proofBytes, err := mp.Prove(messages)
	require.NoError(t, err)

	corrupted := append([]byte(nil), proofBytes...)
	corrupted[len(corrupted)/2] ^= 0xFF

	trace := air.BuildTrace(messages)
	pub := GetPubInputs(trace, len(messages))

	require.Error(t, VerifyProof(corrupted, pub))
}
