package zk

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// twoAdicity is the largest k such that 2^k divides modulus-1. The STARK
// backend's NTT-based low-degree extension and FRI folding both need a
// multiplicative subgroup of a power-of-two order, which only exists up
// to this bound.
const twoAdicity = 40

// oddPart is (modulus-1) / 2^twoAdicity.
var oddPart = uint256.MustFromHex("0xffffffffffffffffffffd3")

var (
	masterRootOnce sync.Once
	masterRoot     BaseElement
	masterRootErr  error
)

// findMasterRoot searches a small fixed sequence of seeds (not random,
// so the result is reproducible across processes without any shared
// state) for a generator of the full order-2^twoAdicity subgroup.
func findMasterRoot() (BaseElement, error) {
	for _, seed := range []uint64{7, 11, 13, 17, 19, 23, 29, 31} {
		candidate := FromUint64(seed).powU256(oddPart)
		half := candidate.Pow(uint64(1) << (twoAdicity - 1))
		if !half.Equal(One()) {
			return candidate, nil
		}
	}
	return BaseElement{}, fmt.Errorf("zk: failed to find a generator of order 2^%d", twoAdicity)
}

// TwoAdicRootOfUnity returns a generator of the unique multiplicative
// subgroup of order 2^logOrder (logOrder <= twoAdicity). Every order's
// root is derived as a fixed power of one master root of maximal order,
// so domains of different sizes nest correctly: the order-2^a subgroup
// is always exactly the order-2^b subgroup's generator raised to
// 2^(b-a) for a <= b. That nesting is what lets a trace-domain
// polynomial's low-degree extension be read off an evaluation-domain
// NTT at a fixed stride.
func TwoAdicRootOfUnity(logOrder uint) (BaseElement, error) {
	if logOrder > twoAdicity {
		return BaseElement{}, fmt.Errorf("zk: order 2^%d exceeds field two-adicity %d", logOrder, twoAdicity)
	}
	masterRootOnce.Do(func() {
		masterRoot, masterRootErr = findMasterRoot()
	})
	if masterRootErr != nil {
		return BaseElement{}, masterRootErr
	}
	return masterRoot.Pow(uint64(1) << (twoAdicity - logOrder)), nil
}

// Domain is a multiplicative evaluation domain: the powers of a
// generator of order len(Domain.Points).
type Domain struct {
	Points []BaseElement
}

// NewDomain builds the domain {1, g, g^2, ..., g^(size-1)} for a
// generator g of order size (size must be a power of two).
func NewDomain(size int) (Domain, error) {
	logSize := logTwo(size)
	if 1<<logSize != size {
		return Domain{}, fmt.Errorf("zk: domain size %d is not a power of two", size)
	}
	root, err := TwoAdicRootOfUnity(uint(logSize))
	if err != nil {
		return Domain{}, err
	}
	points := make([]BaseElement, size)
	points[0] = One()
	for i := 1; i < size; i++ {
		points[i] = points[i-1].Mul(root)
	}
	return Domain{Points: points}, nil
}

func logTwo(n int) uint {
	var log uint
	for (1 << log) < n {
		log++
	}
	return log
}

// NTT evaluates the polynomial with coefficients `coeffs` at every point
// of the domain of size len(coeffs), via a recursive radix-2
// Cooley-Tukey transform. len(coeffs) must be a power of two; other
// lengths are rejected with an error, not padded.
func NTT(coeffs []BaseElement) ([]BaseElement, error) {
	n := len(coeffs)
	logN := logTwo(n)
	if 1<<logN != n {
		return nil, fmt.Errorf("zk: NTT length %d is not a power of two", n)
	}
	root, err := TwoAdicRootOfUnity(logN)
	if err != nil {
		return nil, err
	}
	out := make([]BaseElement, n)
	copy(out, coeffs)
	nttRecursive(out, root)
	return out, nil
}

// InverseNTT interpolates domain evaluations back into coefficients: the
// inverse of NTT, using the inverse root of unity and scaling by 1/n.
func InverseNTT(values []BaseElement) ([]BaseElement, error) {
	n := len(values)
	logN := logTwo(n)
	if 1<<logN != n {
		return nil, fmt.Errorf("zk: inverse NTT length %d is not a power of two", n)
	}
	root, err := TwoAdicRootOfUnity(logN)
	if err != nil {
		return nil, err
	}
	invRoot := root.Inverse()
	out := make([]BaseElement, n)
	copy(out, values)
	nttRecursive(out, invRoot)

	nInv := FromUint64(uint64(n)).Inverse()
	for i := range out {
		out[i] = out[i].Mul(nInv)
	}
	return out, nil
}

// nttRecursive transforms `values` in place using root as the n-th root
// of unity for len(values) == n.
func nttRecursive(values []BaseElement, root BaseElement) {
	n := len(values)
	if n == 1 {
		return
	}

	even := make([]BaseElement, n/2)
	odd := make([]BaseElement, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = values[2*i]
		odd[i] = values[2*i+1]
	}

	rootSquared := root.Square()
	nttRecursive(even, rootSquared)
	nttRecursive(odd, rootSquared)

	power := One()
	for i := 0; i < n/2; i++ {
		twiddle := power.Mul(odd[i])
		values[i] = even[i].Add(twiddle)
		values[i+n/2] = even[i].Sub(twiddle)
		power = power.Mul(root)
	}
}

// EvaluatePolynomial evaluates coefficients at a single point via
// Horner's method. The prover and verifier do not call it: the FRI
// remainder is shipped and checked as codeword entries, not as
// coefficients.
func EvaluatePolynomial(coeffs []BaseElement, point BaseElement) BaseElement {
	result := Zero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(point).Add(coeffs[i])
	}
	return result
}

// LDE interpolates `evaluations` (length = trace domain size, a power
// of two) into coefficients and re-evaluates them on a domain
// blowupFactor times larger, returning the extended codeword.
func LDE(evaluations []BaseElement, blowupFactor int) ([]BaseElement, error) {
	coeffs, err := InverseNTT(evaluations)
	if err != nil {
		return nil, fmt.Errorf("zk: LDE interpolate: %w", err)
	}
	extended := make([]BaseElement, len(coeffs)*blowupFactor)
	copy(extended, coeffs)
	return NTT(extended)
}
