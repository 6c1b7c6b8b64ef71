package air

import (
	"testing"

	zkchat "github.com/kysee/zk-chat"
	"github.com/kysee/zk-chat/zk"
	"github.com/stretchr/testify/require"
)

func TestConstraintCounts(t *testing.T) {
	require.Equal(t, 6, NumTransitionConstraints)
	require.Equal(t, 8, NumBoundaryAssertions)
}

func TestBoundaryAssertionsLength(t *testing.T) {
	pub := PublicInputs{MessageCount: 3}
	assertions := BoundaryAssertions(pub)
	require.Len(t, assertions, NumBoundaryAssertions)
}

func TestValidTraceSatisfiesTransitionConstraints(t *testing.T) {
	messages := []zkchat.Message{
		zkchat.NewMessage(1, 10, "hi", 1000),
		zkchat.NewMessage(2, 10, "there", 1001),
		zkchat.NewMessage(3, 10, "friend", 1002),
	}
	trace := BuildTrace(messages)

	// Every row-to-row transition, over real and padded rows alike (up
	// to, but excluding, the wraparound from the last trace row), must
	// produce all-zero residuals.
	for row := 0; row < trace.Length()-1; row++ {
		frame := trace.FrameAt(row)
		residuals := EvaluateTransition(frame)
		for k, r := range residuals {
			require.True(t, r.IsZero(), "row %d constraint %d", row, k)
		}
	}
}

func TestBoundaryAssertionsHoldOnValidTrace(t *testing.T) {
	messages := []zkchat.Message{
		zkchat.NewMessage(1, 10, "hi", 1000),
		zkchat.NewMessage(2, 10, "there", 1001),
	}
	trace := BuildTrace(messages)
	pub := GetPublicInputs(trace, len(messages))
	assertions := BoundaryAssertions(pub)

	for _, a := range assertions {
		require.True(t, trace[a.Column][a.Row].Equal(a.Value))
	}
}

func TestPublicInputsToElementsLength(t *testing.T) {
	pub := PublicInputs{MessageCount: 5}
	elements := pub.ToElements()
	require.Len(t, elements, 9)
	require.True(t, elements[8].Equal(zk.FromUint64(5)))
}

func TestLastMessageRowZeroWhenEmpty(t *testing.T) {
	pub := PublicInputs{MessageCount: 0}
	require.Equal(t, 0, pub.LastMessageRow())
}
