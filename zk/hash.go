package zk

// Poseidon-style permutation over a 4-element state. 6 full rounds, 48
// partial rounds, 6 full rounds; round r uses round-constant row r%20.
// The round constants and MDS matrix below are reproduced exactly from
// the reference implementation and must not be substituted.

const (
	stateWidth         = 4
	fullRoundsStart    = 6
	partialRounds      = 48
	fullRoundsEnd      = 6
	roundConstantRows  = 20
	spongeRate         = 3
	minTraceLength     = 8
	contentMaxBytes    = 32
	contentChunks      = 4
	contentChunkBytes  = 8
)

var roundConstants = [roundConstantRows][stateWidth]uint64{
	{0x6861759ea556a233, 0x4ef8de4df501ae40, 0x296d6b8ca6ce42c1, 0x2ef38af5a47bd0f4},
	{0x101071f0032379b6, 0x6625a4a3d5b4a4b6, 0x2d5b2e8f5a4c8b6a, 0x4a8f2d6b9e3c7f1a},
	{0x3b7f8e2a9d6c4f1e, 0x7e4a1f8d5c2b9a6e, 0x9c6e3f7a1d4c9e6b, 0x1d4c9e6b2f8a5d1c},
	{0x5c2b9a6e3f1d7c4b, 0x8a5d1c7e4a1f8d5c, 0x6b2f8a5d1c7e4a1f, 0x3d7e6f2c1b4a8d5e},
	{0xf1d7c4b6a8e2f1c5, 0x1c7e4a1f8d5c2b9a, 0xc1b4a8d5e9c6b2f8, 0x6a8e2f1c5b9a3d7e},
	{0xf8d5c2b9a6e3f1d7, 0x5e9c6b2f8a5d1c7e, 0xc5b9a3d7e6f2c1b4, 0x9a6e3f1d7c4b6a8e},
	{0xf8a5d1c7e4a1f8d5, 0x7e6f2c1b4a8d5e9c, 0xd7c4b6a8e2f1c5b9, 0x7e4a1f8d5c2b9a6e},
	{0xb4a8d5e9c6b2f8a5, 0x8e2f1c5b9a3d7e6f, 0x8d5c2b9a6e3f1d7c, 0xe9c6b2f8a5d1c7e4},
	{0x5b9a3d7e6f2c1b4a, 0xa6e3f1d7c4b6a8e2, 0x8a5d1c7e4a1f8d5c, 0xe6f2c1b4a8d5e9c6},
	{0x7c4b6a8e2f1c5b9a, 0xe4a1f8d5c2b9a6e3, 0x4a8d5e9c6b2f8a5d, 0xe2f1c5b9a3d7e6f2},
	{0x5c2b9a6e3f1d7c4b, 0xc6b2f8a5d1c7e4a1, 0x9a3d7e6f2c1b4a8d, 0xe3f1d7c4b6a8e2f1},
	{0x5d1c7e4a1f8d5c2b, 0xf2c1b4a8d5e9c6b2, 0x4b6a8e2f1c5b9a3d, 0xa1f8d5c2b9a6e3f1},
	{0x8c3e5f9b2a6d4e7f, 0x3f7a1d5c8e2b9f6a, 0x9e6b3f8a2d5c1e7b, 0x2d5f8a3e6b9c1f4d},
	{0x7b4e8a5d2f6c9e3b, 0x6c9e3f7a4d8b5f2c, 0x5f2a8d6e3b9c7f1e, 0x4e7b1f5a8d3c6b9e},
	{0x1f5d8b3e6c9a7f4b, 0x8e3b6f9c2d5a7e1f, 0x3c7f1e5b8a4d6c2f, 0x6f9d2e5b8c3a7f1d},
	{0x9c4e7f2a5d8b6f3c, 0x7e1f4b8d5c2a6f9e, 0x2a6f9e3c7b1d5f8a, 0x5d8f3e6b9c4a7f2d},
	{0x4b7f1e5c8a2d6f9b, 0x1e5f8b3c6a9d4f7e, 0x8f3a6d9e2c5b7f1a, 0x3e6b9f4d7a1c5f8e},
	{0x6d9f2e5a8c3b7f4d, 0x9e4f7a1d5c8b2f6a, 0x7a1f4e8d6c3b9f5a, 0x2f6a9d3e7b4c1f8d},
	{0xf4a7e1d5c8b3f6a9, 0x3b7f4e1a5d8c6f2b, 0x1d5f8e3a6c9b4f7d, 0x8c2f6a9e3d7b1f5c},
	{0xe3d7b1f4a8c5e6b9, 0x5f8a2e6d9c3b7f1e, 0x4a7f1d5e8b2c6f9a, 0x7e1f5c8a4d6b3f7e},
}

func roundConstant(round, lane int) BaseElement {
	return FromUint64(roundConstants[round%roundConstantRows][lane])
}

// mds applies the fixed 4x4 MDS matrix:
//
//	[5 7 1 3]
//	[4 6 1 1]
//	[1 3 5 7]
//	[1 1 4 6]
func mds(state [stateWidth]BaseElement) [stateWidth]BaseElement {
	c := func(n uint64, e BaseElement) BaseElement { return FromUint64(n).Mul(e) }
	return [stateWidth]BaseElement{
		c(5, state[0]).Add(c(7, state[1])).Add(state[2]).Add(c(3, state[3])),
		c(4, state[0]).Add(c(6, state[1])).Add(state[2]).Add(state[3]),
		state[0].Add(c(3, state[1])).Add(c(5, state[2])).Add(c(7, state[3])),
		state[0].Add(state[1]).Add(c(4, state[2])).Add(c(6, state[3])),
	}
}

// PoseidonPermutation runs the 60-round Poseidon-style permutation over a
// 4-element state: 6 full rounds, 48 partial rounds, 6 full rounds.
func PoseidonPermutation(state [stateWidth]BaseElement) [stateWidth]BaseElement {
	round := 0

	for ; round < fullRoundsStart; round++ {
		for i := 0; i < stateWidth; i++ {
			state[i] = state[i].Add(roundConstant(round, i))
		}
		for i := 0; i < stateWidth; i++ {
			state[i] = state[i].Cube()
		}
		state = mds(state)
	}

	for ; round < fullRoundsStart+partialRounds; round++ {
		for i := 0; i < stateWidth; i++ {
			state[i] = state[i].Add(roundConstant(round, i))
		}
		state[0] = state[0].Cube()
		state = mds(state)
	}

	for ; round < fullRoundsStart+partialRounds+fullRoundsEnd; round++ {
		for i := 0; i < stateWidth; i++ {
			state[i] = state[i].Add(roundConstant(round, i))
		}
		for i := 0; i < stateWidth; i++ {
			state[i] = state[i].Cube()
		}
		state = mds(state)
	}

	return state
}

// ZkHash sponges an arbitrary number of field elements into a 4-element
// digest. Rate 3, capacity 1: each chunk of up to 3 inputs is absorbed
// into lanes 0..2 (lane 3 untouched) followed by a permutation. A final
// permutation is applied after the last absorbed chunk.
func ZkHash(inputs []BaseElement) [stateWidth]BaseElement {
	var state [stateWidth]BaseElement

	for i := 0; i < len(inputs); i += spongeRate {
		end := i + spongeRate
		if end > len(inputs) {
			end = len(inputs)
		}
		for j := i; j < end; j++ {
			state[j-i] = state[j-i].Add(inputs[j])
		}
		state = PoseidonPermutation(state)
	}

	return PoseidonPermutation(state)
}

// PackContent splits up to 32 bytes of UTF-8 content into 4 field
// elements, 8 little-endian bytes per element. Bytes past 32 are
// discarded; absent bytes are zero.
func PackContent(content string) [contentChunks]BaseElement {
	b := []byte(content)
	if len(b) > contentMaxBytes {
		b = b[:contentMaxBytes]
	}
	var elements [contentChunks]BaseElement
	for chunk := 0; chunk*contentChunkBytes < len(b) && chunk < contentChunks; chunk++ {
		start := chunk * contentChunkBytes
		end := start + contentChunkBytes
		if end > len(b) {
			end = len(b)
		}
		elements[chunk] = FromBytesLE(b[start:end])
	}
	return elements
}

// HashToElements converts a 32-byte hash into 4 field elements, 8
// little-endian bytes per element (the inverse of ElementsToHash).
func HashToElements(hash [32]byte) [contentChunks]BaseElement {
	var out [contentChunks]BaseElement
	for i := 0; i < contentChunks; i++ {
		out[i] = FromBytesLE(hash[i*contentChunkBytes : (i+1)*contentChunkBytes])
	}
	return out
}

// ElementsToHash renders 4 field elements into a 32-byte hash by writing
// the low 64 bits of each element as little-endian bytes.
func ElementsToHash(elements [contentChunks]BaseElement) [32]byte {
	var out [32]byte
	for i, e := range elements {
		v := e.Uint64()
		for b := 0; b < contentChunkBytes; b++ {
			out[i*contentChunkBytes+b] = byte(v)
			v >>= 8
		}
	}
	return out
}

// TruncateElements re-embeds the low 64 bits of each element.
func TruncateElements(elements [contentChunks]BaseElement) [contentChunks]BaseElement {
	var out [contentChunks]BaseElement
	for i, e := range elements {
		out[i] = e.Truncate()
	}
	return out
}

// MessageHashInputs builds the 7-element input vector (id, sender,
// timestamp, 4 packed-content elements) fed to ZkHash for a per-message
// digest.
func MessageHashInputs(id, sender, timestamp uint64, content string) []BaseElement {
	packed := PackContent(content)
	inputs := make([]BaseElement, 0, 3+contentChunks)
	inputs = append(inputs, FromUint64(id), FromUint64(sender), FromUint64(timestamp))
	inputs = append(inputs, packed[:]...)
	return inputs
}

// ComputeZkHash renders the ZK-friendly digest of a message's fields to
// 32 bytes via ElementsToHash(ZkHash(MessageHashInputs(...))).
func ComputeZkHash(id, sender, timestamp uint64, content string) [32]byte {
	digest := ZkHash(MessageHashInputs(id, sender, timestamp, content))
	return ElementsToHash(digest)
}
