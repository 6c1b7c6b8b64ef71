package zk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldArithmetic(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(7)

	require.True(t, a.Add(b).Equal(FromUint64(12)))
	require.True(t, b.Sub(a).Equal(FromUint64(2)))
	require.True(t, a.Mul(b).Equal(FromUint64(35)))
	require.True(t, a.Square().Equal(FromUint64(25)))
	require.True(t, a.Cube().Equal(FromUint64(125)))
	require.True(t, Zero().IsZero())
	require.False(t, a.IsZero())
}

func TestFieldInverse(t *testing.T) {
	a := FromUint64(12345)
	inv := a.Inverse()
	require.True(t, a.Mul(inv).Equal(One()))

	require.Panics(t, func() { Zero().Inverse() })
}

func TestFieldNeg(t *testing.T) {
	a := FromUint64(42)
	require.True(t, a.Add(a.Neg()).IsZero())
}

func TestFieldPow(t *testing.T) {
	a := FromUint64(3)
	require.True(t, a.Pow(0).Equal(One()))
	require.True(t, a.Pow(4).Equal(FromUint64(81)))
}

func TestFieldGobRoundTrip(t *testing.T) {
	a := FromUint64(987654321)
	data, err := a.GobEncode()
	require.NoError(t, err)

	var b BaseElement
	require.NoError(t, b.GobDecode(data))
	require.True(t, a.Equal(b))
}

func TestTwoAdicRootOfUnityNests(t *testing.T) {
	bigRoot, err := TwoAdicRootOfUnity(10)
	require.NoError(t, err)
	smallRoot, err := TwoAdicRootOfUnity(7)
	require.NoError(t, err)

	// The order-2^7 subgroup's generator must be the order-2^10
	// generator raised to 2^(10-7), so NTT domains of different sizes
	// nest consistently.
	require.True(t, bigRoot.Pow(1<<3).Equal(smallRoot))

	// A generator of order 2^k must not itself have order 2^(k-1).
	require.False(t, smallRoot.Pow(1<<6).Equal(One()))
	require.True(t, smallRoot.Pow(1<<7).Equal(One()))
}

func TestTwoAdicRootOfUnityRejectsExcessiveOrder(t *testing.T) {
	_, err := TwoAdicRootOfUnity(twoAdicity + 1)
	require.Error(t, err)
}
