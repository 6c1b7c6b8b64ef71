package zk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZkHashDeterministic(t *testing.T) {
	inputs := []BaseElement{FromUint64(1), FromUint64(2), FromUint64(3)}
	a := ZkHash(inputs)
	b := ZkHash(inputs)
	require.Equal(t, a, b)
}

func TestZkHashSensitiveToInput(t *testing.T) {
	a := ZkHash([]BaseElement{FromUint64(1), FromUint64(2)})
	b := ZkHash([]BaseElement{FromUint64(1), FromUint64(3)})
	require.NotEqual(t, a, b)
}

func TestZkHashHandlesMultipleChunks(t *testing.T) {
	// spongeRate is 3; 7 inputs span three absorb/permute rounds.
	inputs := make([]BaseElement, 7)
	for i := range inputs {
		inputs[i] = FromUint64(uint64(i + 1))
	}
	digest := ZkHash(inputs)
	require.False(t, digest[0].IsZero())
}

func TestHashElementsRoundTrip(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i * 7)
	}
	elements := HashToElements(hash)
	back := ElementsToHash(TruncateElements(elements))
	require.Equal(t, hash, back)
}

func TestPackContentTruncatesAndPads(t *testing.T) {
	short := PackContent("hi")
	require.True(t, short[1].IsZero())
	require.True(t, short[2].IsZero())
	require.True(t, short[3].IsZero())

	long := PackContent("this content is definitely longer than thirty two bytes of utf8 text")
	require.False(t, long[3].IsZero())
}

func TestComputeZkHashMatchesManualPipeline(t *testing.T) {
	got := ComputeZkHash(1, 2, 1000, "hello")
	want := ElementsToHash(ZkHash(MessageHashInputs(1, 2, 1000, "hello")))
	require.Equal(t, want, got)
}

func TestSessionSaltStableWithinProcess(t *testing.T) {
	a := SessionSalt()
	b := SessionSalt()
	require.True(t, a.Equal(b))
}
