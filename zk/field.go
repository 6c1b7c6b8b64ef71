// Package zk implements the ZK-friendly cryptographic primitives (prime
// field, Poseidon-style sponge, session salt) and the STARK building
// blocks (NTT domains, polynomial division, Merkle commitments,
// Fiat-Shamir transcript, FRI folding) that back the zk-chat
// message-chain proofs.
package zk

import (
	"crypto/rand"
	"fmt"

	"github.com/holiman/uint256"
)

// modulus is the Winterfell f128 prime: 2^128 - 45*2^40 + 1. It has
// two-adicity 40, which is what lets NewDomain construct
// power-of-two NTT domains for the LDE and FRI folding.
var modulus = uint256.MustFromHex("0xffffffffffffffffffffd30000000001")

var modulusMinus2 = func() *uint256.Int {
	two := uint256.NewInt(2)
	r := new(uint256.Int).Sub(modulus, two)
	return r
}()

// BaseElement is an element of the prime field F = Z/modulus. The zero
// value is the additive identity.
type BaseElement struct {
	v uint256.Int
}

// Zero is the additive identity of F.
func Zero() BaseElement { return BaseElement{} }

// One is the multiplicative identity of F.
func One() BaseElement { return FromUint64(1) }

// FromUint64 embeds a uint64 into F.
func FromUint64(x uint64) BaseElement {
	var e BaseElement
	e.v.SetUint64(x)
	return e
}

// FromBytesLE interprets 8 little-endian bytes as a uint64 and embeds it.
func FromBytesLE(b []byte) BaseElement {
	var buf [8]byte
	copy(buf[:], b)
	var x uint64
	for i := 7; i >= 0; i-- {
		x = (x << 8) | uint64(buf[i])
	}
	return FromUint64(x)
}

// Uint64 returns the low 64 bits of the element's canonical representative.
// This is the byte-bridge projection spec'd for elements_to_hash /
// truncate_element: every chained digest is re-embedded through this
// truncation so serialized hashes round-trip identically.
func (e BaseElement) Uint64() uint64 {
	return e.v.Uint64()
}

// Truncate re-embeds the low 64 bits of e as a fresh field element.
func (e BaseElement) Truncate() BaseElement {
	return FromUint64(e.Uint64())
}

// Add returns e+other mod modulus.
func (e BaseElement) Add(other BaseElement) BaseElement {
	var out BaseElement
	out.v.AddMod(&e.v, &other.v, modulus)
	return out
}

// Sub returns e-other mod modulus.
func (e BaseElement) Sub(other BaseElement) BaseElement {
	var out BaseElement
	// uint256 has no native SubMod; (e + (modulus - other)) mod modulus.
	neg := new(uint256.Int).Sub(modulus, &other.v)
	out.v.AddMod(&e.v, neg, modulus)
	return out
}

// Mul returns e*other mod modulus.
func (e BaseElement) Mul(other BaseElement) BaseElement {
	var out BaseElement
	out.v.MulMod(&e.v, &other.v, modulus)
	return out
}

// Square returns e*e mod modulus.
func (e BaseElement) Square() BaseElement { return e.Mul(e) }

// Cube returns e*e*e mod modulus, the Poseidon S-box.
func (e BaseElement) Cube() BaseElement { return e.Mul(e).Mul(e) }

// Neg returns -e mod modulus.
func (e BaseElement) Neg() BaseElement { return Zero().Sub(e) }

// Equal reports whether e and other are the same field element.
func (e BaseElement) Equal(other BaseElement) bool { return e.v.Eq(&other.v) }

// IsZero reports whether e is the additive identity.
func (e BaseElement) IsZero() bool { return e.v.IsZero() }

// Pow returns e raised to exponent via square-and-multiply.
func (e BaseElement) Pow(exponent uint64) BaseElement {
	return e.powU256(uint256.NewInt(exponent))
}

// powU256 raises e to an arbitrary-width exponent via square-and-multiply.
func (e BaseElement) powU256(exponent *uint256.Int) BaseElement {
	result := One()
	base := e
	exp := new(uint256.Int).Set(exponent)
	for !exp.IsZero() {
		if exp.Uint64()&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		exp.Rsh(exp, 1)
	}
	return result
}

// Inverse returns the multiplicative inverse of e via Fermat's little
// theorem (e^(modulus-2)). Panics if e is zero.
func (e BaseElement) Inverse() BaseElement {
	if e.IsZero() {
		panic("zk: inverse of zero field element")
	}
	result := e.powU256(modulusMinus2)
	return result
}

// RandomElement draws a cryptographically strong random field element.
func RandomElement() (BaseElement, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return BaseElement{}, fmt.Errorf("zk: read random bytes: %w", err)
	}
	return FromBytesLE(buf[:]), nil
}

func (e BaseElement) String() string {
	return e.v.Dec()
}

// GobEncode renders e as its 32-byte big-endian representative so
// BaseElement values can be embedded directly in gob-encoded proofs
// despite the unexported uint256.Int field.
func (e BaseElement) GobEncode() ([]byte, error) {
	b := e.v.Bytes32()
	return b[:], nil
}

// GobDecode restores e from the 32-byte big-endian encoding GobEncode produced.
func (e *BaseElement) GobDecode(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("zk: base element gob payload must be 32 bytes, got %d", len(data))
	}
	e.v.SetBytes32(data)
	return nil
}
