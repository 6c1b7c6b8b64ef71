package zk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMerkleTreeProveAndVerify(t *testing.T) {
	rows := make([][]BaseElement, 8)
	for i := range rows {
		rows[i] = []BaseElement{FromUint64(uint64(i)), FromUint64(uint64(i * i))}
	}
	tree, err := NewMerkleTree(rows)
	require.NoError(t, err)

	leaf, path := tree.Prove(3)
	require.Equal(t, HashRow(rows[3]), leaf)
	require.True(t, VerifyMerklePath(tree.Root(), leaf, 3, path))
	require.False(t, VerifyMerklePath(tree.Root(), leaf, 4, path))
}

func TestMerkleTreeRejectsNonPowerOfTwo(t *testing.T) {
	_, err := NewMerkleTree([][]BaseElement{{FromUint64(1)}, {FromUint64(2)}, {FromUint64(3)}})
	require.Error(t, err)
}

func TestHashRowDistinguishesFullRepresentative(t *testing.T) {
	// Two field elements agreeing on their low 64 bits but not their
	// full value must not hash to the same leaf digest.
	low := FromUint64(42)
	var high BaseElement
	high.v.SetUint64(42)
	high.v.Lsh(&high.v, 70)
	high.v.Add(&high.v, &low.v)

	require.NotEqual(t, HashRow([]BaseElement{low}), HashRow([]BaseElement{high}))
}
