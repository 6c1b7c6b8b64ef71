package zk

import (
	"fmt"

	"github.com/zeebo/blake3"
)

// digestSize is the Merkle tree's node size: a 256-bit blake3 digest.
const digestSize = 32

// HashRow blake3-hashes a row of field elements (one row of a trace
// column group, or one LDE codeword entry) into a single leaf digest.
// Elements are committed via their full canonical 32-byte
// representative rather than the low-64-bit projection used for
// transcript challenges and message hashing, so two distinct field
// elements that happen to share a low word never collide as Merkle
// leaves. Exported so a verifier holding only an opened row (not the
// tree it came from) can recompute the same leaf digest.
func HashRow(row []BaseElement) [digestSize]byte {
	h := blake3.New()
	for _, e := range row {
		b := e.v.Bytes32()
		_, _ = h.Write(b[:])
	}
	var out [digestSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashNodes(left, right [digestSize]byte) [digestSize]byte {
	h := blake3.New()
	_, _ = h.Write(left[:])
	_, _ = h.Write(right[:])
	var out [digestSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// MerkleTree is a binary Merkle tree over per-row leaf digests, used to
// commit to trace, composition, and FRI-layer codewords.
type MerkleTree struct {
	layers [][][digestSize]byte // layers[0] = leaves, layers[len-1] = {root}
}

// NewMerkleTree builds a tree over `rows`, where each row is hashed with
// HashRow. len(rows) must be a power of two.
func NewMerkleTree(rows [][]BaseElement) (*MerkleTree, error) {
	n := len(rows)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("zk: merkle tree needs a power-of-two row count, got %d", n)
	}

	leaves := make([][digestSize]byte, n)
	for i, row := range rows {
		leaves[i] = HashRow(row)
	}

	layers := [][][digestSize]byte{leaves}
	for len(layers[len(layers)-1]) > 1 {
		prev := layers[len(layers)-1]
		next := make([][digestSize]byte, len(prev)/2)
		for i := range next {
			next[i] = hashNodes(prev[2*i], prev[2*i+1])
		}
		layers = append(layers, next)
	}

	return &MerkleTree{layers: layers}, nil
}

// Root returns the tree's root digest.
func (t *MerkleTree) Root() [digestSize]byte {
	return t.layers[len(t.layers)-1][0]
}

// MerklePath is the sibling chain needed to authenticate one leaf
// against a root, from the leaf's layer up to (but not including) the
// root.
type MerklePath [][digestSize]byte

// Prove returns the leaf digest and authentication path for row index i.
func (t *MerkleTree) Prove(i int) (leaf [digestSize]byte, path MerklePath) {
	leaf = t.layers[0][i]
	path = make(MerklePath, 0, len(t.layers)-1)
	idx := i
	for layer := 0; layer < len(t.layers)-1; layer++ {
		sibling := idx ^ 1
		path = append(path, t.layers[layer][sibling])
		idx /= 2
	}
	return leaf, path
}

// VerifyMerklePath recomputes a root from a leaf digest, its index, and
// an authentication path, and reports whether it matches `root`.
func VerifyMerklePath(root [digestSize]byte, leaf [digestSize]byte, index int, path MerklePath) bool {
	current := leaf
	idx := index
	for _, sibling := range path {
		if idx%2 == 0 {
			current = hashNodes(current, sibling)
		} else {
			current = hashNodes(sibling, current)
		}
		idx /= 2
	}
	return current == root
}
