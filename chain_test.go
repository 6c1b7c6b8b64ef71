package zkchat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddMessageAppendsAndAdvancesChainHash(t *testing.T) {
	chain := NewMessageChain()
	require.True(t, chain.IsEmpty())
	require.Equal(t, [32]byte{}, chain.ChainHash())

	m1 := NewMessage(1, 10, "hello", 1000)
	require.NoError(t, chain.AddMessage(m1))
	require.Equal(t, 1, chain.Len())
	afterFirst := chain.ChainHash()
	require.NotEqual(t, [32]byte{}, afterFirst)

	m2 := NewMessage(2, 10, "world", 1001)
	require.NoError(t, chain.AddMessage(m2))
	require.Equal(t, 2, chain.Len())
	require.NotEqual(t, afterFirst, chain.ChainHash())
}

func TestAddMessageRejectsInvalidHash(t *testing.T) {
	chain := NewMessageChain()
	m := NewMessage(1, 10, "hello", 1000)
	m.Hash[0] ^= 0xFF

	err := chain.AddMessage(m)
	require.ErrorIs(t, err, ErrInvalidMessageHash)
	require.True(t, chain.IsEmpty())
}

func TestAddMessageRejectsDuplicateID(t *testing.T) {
	chain := NewMessageChain()
	require.NoError(t, chain.AddMessage(NewMessage(1, 10, "a", 1000)))

	err := chain.AddMessage(NewMessage(1, 10, "b", 2000))
	require.ErrorIs(t, err, ErrDuplicateMessageID)
	require.Equal(t, 1, chain.Len())
}

func TestAddMessageAllowsSameIDDifferentSender(t *testing.T) {
	chain := NewMessageChain()
	require.NoError(t, chain.AddMessage(NewMessage(1, 10, "a", 1000)))
	require.NoError(t, chain.AddMessage(NewMessage(1, 20, "b", 2000)))
	require.Equal(t, 2, chain.Len())
}

func TestAddMessageRejectsNonMonotonicTimestamp(t *testing.T) {
	chain := NewMessageChain()
	require.NoError(t, chain.AddMessage(NewMessage(1, 10, "a", 1000)))

	err := chain.AddMessage(NewMessage(2, 10, "b", 1000))
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	require.Equal(t, 1, chain.Len())

	err = chain.AddMessage(NewMessage(3, 10, "c", 999))
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	require.Equal(t, 1, chain.Len())
}

func TestAddMessageIsAtomicOnFailure(t *testing.T) {
	chain := NewMessageChain()
	require.NoError(t, chain.AddMessage(NewMessage(1, 10, "a", 1000)))
	before := chain.ChainHash()

	bad := NewMessage(2, 10, "b", 1000) // same timestamp, rejected
	require.Error(t, chain.AddMessage(bad))
	require.Equal(t, before, chain.ChainHash())
	require.Equal(t, 1, chain.Len())
}

func TestMessagesViewReflectsAdmissionOrder(t *testing.T) {
	chain := NewMessageChain()
	m1 := NewMessage(1, 10, "a", 1000)
	m2 := NewMessage(2, 10, "b", 1001)
	require.NoError(t, chain.AddMessage(m1))
	require.NoError(t, chain.AddMessage(m2))

	msgs := chain.Messages()
	require.Equal(t, []Message{m1, m2}, msgs)
}

func TestMessageVerifyHash(t *testing.T) {
	m := NewMessage(1, 10, "hello", 1000)
	require.True(t, m.VerifyHash())

	m.Content = "tampered"
	require.False(t, m.VerifyHash())
}
