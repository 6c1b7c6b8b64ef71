package air

import (
	"math/bits"

	zkchat "github.com/kysee/zk-chat"
	"github.com/kysee/zk-chat/zk"
)

// Trace is a column-oriented execution trace: Trace[col][row].
// len(Trace) == TraceWidth.
type Trace [][]zk.BaseElement

// Length returns the number of rows in the trace.
func (t Trace) Length() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// FrameAt returns the (current, next) frame for row-to-row transition
// checking; next wraps to row 0 past the last row, matching the cyclic
// domain a STARK trace is evaluated over.
func (t Trace) FrameAt(row int) Frame {
	var f Frame
	next := row + 1
	if next >= t.Length() {
		next = 0
	}
	for c := 0; c < TraceWidth; c++ {
		f.Current[c] = t[c][row]
		f.Next[c] = t[c][next]
	}
	return f
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// BuildTrace populates a width-19 trace from a sequence of messages.
// Real messages occupy rows 0..len(messages)-1; the trace is then
// padded to at least MinTraceLength rows and, for the STARK backend's
// low-degree extension, on up to the next power of two. Padding
// replicates the last real message's data columns, carries chain_hash
// forward, increments timestamp by 1 per padded row, and continues the
// column-18 recurrence.
func BuildTrace(messages []zkchat.Message) Trace {
	realLength := len(messages)
	base := realLength
	if base < 1 {
		base = 1
	}
	if base < MinTraceLength {
		base = MinTraceLength
	}
	traceLength := nextPowerOfTwo(base)

	trace := make(Trace, TraceWidth)
	for c := range trace {
		trace[c] = make([]zk.BaseElement, traceLength)
	}

	salt := zk.SessionSalt()

	for step, message := range messages {
		if step > 0 {
			for i := 0; i < 4; i++ {
				trace[ColPrevChainHash0+i][step] = trace[ColChainHash0+i][step-1]
			}
		}

		content := zk.PackContent(message.Content)
		trace[ColMessageID][step] = zk.FromUint64(message.ID)
		trace[ColSenderIDDup][step] = zk.FromUint64(message.SenderID)
		trace[ColTimestampDup][step] = zk.FromUint64(message.Timestamp)
		for i := 0; i < 4; i++ {
			trace[ColContent0+i][step] = content[i]
		}

		messageInputs := zk.MessageHashInputs(message.ID, message.SenderID, message.Timestamp, message.Content)
		messageHashFull := zk.ZkHash(messageInputs)
		messageHashTrunc := zk.TruncateElements(messageHashFull)

		var chainInputs [9]zk.BaseElement
		for i := 0; i < 4; i++ {
			chainInputs[i] = trace[ColPrevChainHash0+i][step]
		}
		for i := 0; i < 4; i++ {
			chainInputs[4+i] = messageHashTrunc[i]
		}
		chainInputs[8] = salt

		chainHashFull := zk.ZkHash(chainInputs[:])
		chainHashTrunc := zk.TruncateElements(chainHashFull)
		for i := 0; i < 4; i++ {
			trace[ColChainHash0+i][step] = chainHashTrunc[i]
		}

		inputSum := trace[ColMessageID][step].
			Add(trace[ColSenderIDDup][step]).
			Add(trace[ColTimestampDup][step]).
			Add(trace[ColContent0][step]).
			Add(trace[ColContent0+1][step]).
			Add(trace[ColContent0+2][step]).
			Add(trace[ColContent0+3][step])

		if step == 0 {
			trace[ColPartialHash][step] = inputSum
		} else {
			prev := trace[ColPartialHash][step-1]
			trace[ColPartialHash][step] = prev.Cube().Add(inputSum)
		}

		if step > 0 {
			trace[ColPrevTimestamp][step] = zk.FromUint64(messages[step-1].Timestamp)
		}
		trace[ColTimestamp][step] = zk.FromUint64(message.Timestamp)
		trace[ColSenderID][step] = zk.FromUint64(message.SenderID)
	}

	if realLength < traceLength {
		lastRealRow := realLength - 1
		if lastRealRow < 0 {
			lastRealRow = 0
		}
		padStart := realLength
		if realLength == 0 {
			// No real message exists to copy forward from; row 0 is left
			// at its zero value and padding begins at row 1.
			padStart = 1
		}
		for step := padStart; step < traceLength; step++ {
			for i := 0; i < 4; i++ {
				trace[ColPrevChainHash0+i][step] = trace[ColChainHash0+i][step-1]
				trace[ColChainHash0+i][step] = trace[ColChainHash0+i][step-1]
			}

			trace[ColPrevTimestamp][step] = trace[ColTimestamp][step-1]
			trace[ColTimestamp][step] = trace[ColTimestamp][step-1].Add(zk.One())

			trace[ColSenderID][step] = trace[ColSenderID][lastRealRow]
			for col := ColMessageID; col <= ColContent0+3; col++ {
				trace[col][step] = trace[col][lastRealRow]
			}

			inputSum := trace[ColMessageID][step].
				Add(trace[ColSenderIDDup][step]).
				Add(trace[ColTimestampDup][step]).
				Add(trace[ColContent0][step]).
				Add(trace[ColContent0+1][step]).
				Add(trace[ColContent0+2][step]).
				Add(trace[ColContent0+3][step])

			prev := trace[ColPartialHash][step-1]
			trace[ColPartialHash][step] = prev.Cube().Add(inputSum)
		}
	}

	return trace
}
