package zk

import "fmt"

// FRILayer is one committed round of folding: the Merkle tree over the
// folded codeword at this round, the codeword itself (kept by the
// prover for opening), the domain it was evaluated on, and the
// transcript challenges used to fold into it from the previous round.
type FRILayer struct {
	Tree        *MerkleTree
	Evaluations []BaseElement
	Domain      Domain
	Challenges  []BaseElement
}

// FRIProof is the output of FRI folding: the committed layers plus the
// small remainder codeword left once folding stops.
type FRIProof struct {
	Layers    []FRILayer
	Remainder []BaseElement
}

// FRIFoldCount returns how many binary fold steps FRICommit performs
// before the codeword first drops to at most maxRemainderSize entries,
// computed purely from sizes so a verifier can reproduce it without
// access to the codeword itself.
func FRIFoldCount(initialSize, maxRemainderSize int) int {
	n := initialSize
	count := 0
	for n > maxRemainderSize {
		n /= 2
		count++
	}
	return count
}

func log2Int(n int) (int, error) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, fmt.Errorf("zk: %d is not a positive power of two", n)
	}
	log := 0
	for (1 << log) < n {
		log++
	}
	return log, nil
}

// foldOnce performs one binary FRI fold step: given evaluations on a
// domain of even order and a challenge, it halves both the codeword and
// the domain.
//
//	g(x^2) = (f(x)+f(-x))/2 + challenge*(f(x)-f(-x))/(2x)
func foldOnce(evaluations []BaseElement, domain Domain, challenge BaseElement) ([]BaseElement, Domain) {
	half := len(evaluations) / 2
	two := FromUint64(2)
	twoInv := two.Inverse()

	next := make([]BaseElement, half)
	nextPoints := make([]BaseElement, half)
	for i := 0; i < half; i++ {
		x := domain.Points[i]
		fx := evaluations[i]
		fNegX := evaluations[i+half]
		even := fx.Add(fNegX).Mul(twoInv)
		odd := fx.Sub(fNegX).Mul(twoInv).Mul(x.Inverse())
		next[i] = even.Add(challenge.Mul(odd))
		nextPoints[i] = x.Square()
	}
	return next, Domain{Points: nextPoints}
}

// FRICommit folds `codeword` (evaluated on `domain`) down to at most
// maxRemainderSize entries, committing a fresh Merkle tree after every
// binary fold except the last, so each committed layer's fold step is
// verifiable from nothing but the two layers' own openings. Every fold
// halves the codeword, whatever foldingFactor is: foldingFactor is only
// checked to be a power of two and does not change how many entries a
// fold step combines or how many layers are committed. Every fold
// challenge is drawn from — and every layer
// commitment absorbed into — `transcript`, so the verifier can
// reproduce the same folding path from the proof's own commitments.
func FRICommit(codeword []BaseElement, domain Domain, foldingFactor, maxRemainderSize int, transcript *Transcript) (*FRIProof, error) {
	if _, err := log2Int(foldingFactor); err != nil {
		return nil, fmt.Errorf("zk: fri folding factor: %w", err)
	}

	current := codeword
	currentDomain := domain
	var layers []FRILayer

	for len(current) > maxRemainderSize {
		challenge := transcript.DrawElement()
		next, nextDomain := foldOnce(current, currentDomain, challenge)

		// Only commit a layer if folding must continue past it; the
		// final fold's output is shipped as the plain-text Remainder
		// instead, since it is already small enough to send directly.
		if len(next) > maxRemainderSize {
			rows := make([][]BaseElement, len(next))
			for i, v := range next {
				rows[i] = []BaseElement{v}
			}
			tree, err := NewMerkleTree(rows)
			if err != nil {
				return nil, fmt.Errorf("zk: commit fri layer: %w", err)
			}
			transcript.AbsorbDigest(tree.Root())

			layers = append(layers, FRILayer{
				Tree:        tree,
				Evaluations: next,
				Domain:      nextDomain,
				Challenges:  []BaseElement{challenge},
			})
		}

		current, currentDomain = next, nextDomain
	}

	return &FRIProof{Layers: layers, Remainder: current}, nil
}

// FRIOpening is one query's view into a single FRI layer: the value at
// the folded position and at its pair, plus both authentication paths.
type FRIOpening struct {
	Index         int
	Value         BaseElement
	PairValue     BaseElement
	ValuePath     MerklePath
	PairValuePath MerklePath
}

// OpenFoldPair authenticates the fold-pair (value at position, value at
// position+half) against tree. It works at any stage of a FRI chain:
// the composition codeword that seeds folding, or any committed layer
// feeding the next fold.
func OpenFoldPair(values []BaseElement, tree *MerkleTree, position int) FRIOpening {
	half := len(values) / 2
	idx := position % half
	_, path := tree.Prove(idx)
	_, pairPath := tree.Prove(idx + half)
	return FRIOpening{
		Index:         idx,
		Value:         values[idx],
		PairValue:     values[idx+half],
		ValuePath:     path,
		PairValuePath: pairPath,
	}
}

// OpenAt returns the query opening for layer position i (and its fold
// pair i+len/2) against this layer's own tree.
func (l FRILayer) OpenAt(i int) FRIOpening {
	return OpenFoldPair(l.Evaluations, l.Tree, i)
}

// VerifyFRILayerFold checks that an opened (value, pairValue) pair at
// domain point x folds, under challenge, to `expectedNext` — the value
// the following layer (or the remainder) claims at the folded position.
func VerifyFRILayerFold(x, value, pairValue, challenge, expectedNext BaseElement) bool {
	two := FromUint64(2)
	twoInv := two.Inverse()
	even := value.Add(pairValue).Mul(twoInv)
	odd := value.Sub(pairValue).Mul(twoInv).Mul(x.Inverse())
	folded := even.Add(challenge.Mul(odd))
	return folded.Equal(expectedNext)
}
