package zkchat

import (
	"github.com/kysee/zk-chat/zk"
)

// MessageChain is a mutable, single-owner aggregate of admitted messages
// plus the running chain hash. Once a message is admitted it is never
// mutated; callers needing a consistent snapshot across threads must
// coordinate externally (see §5 of the design).
type MessageChain struct {
	messages  []Message
	chainHash [32]byte
}

// NewMessageChain returns an empty chain with chain hash all-zero.
func NewMessageChain() *MessageChain {
	return &MessageChain{}
}

// AddMessage admits m into the chain, enforcing hash validity,
// (sender_id, id) uniqueness, and strict timestamp monotonicity.
// Admission is atomic: on any error the chain is left byte-identical to
// before the call.
func (c *MessageChain) AddMessage(m Message) error {
	if !m.VerifyHash() {
		return ErrInvalidMessageHash
	}

	for _, existing := range c.messages {
		if existing.SenderID == m.SenderID && existing.ID == m.ID {
			return ErrDuplicateMessageID
		}
	}

	if len(c.messages) > 0 {
		last := c.messages[len(c.messages)-1]
		if m.Timestamp <= last.Timestamp {
			return ErrInvalidTimestamp
		}
	}

	c.chainHash = nextChainHash(c.chainHash, m.Hash)
	c.messages = append(c.messages, m)
	return nil
}

// nextChainHash folds a new message's hash into the running chain hash,
// binding the session salt: zk_hash(prev || msg || [salt]).
func nextChainHash(prev [32]byte, msgHash [32]byte) [32]byte {
	prevElements := zk.HashToElements(prev)
	msgElements := zk.HashToElements(msgHash)

	inputs := make([]zk.BaseElement, 0, 9)
	inputs = append(inputs, prevElements[:]...)
	inputs = append(inputs, msgElements[:]...)
	inputs = append(inputs, zk.SessionSalt())

	digest := zk.ZkHash(inputs)
	return zk.ElementsToHash(digest)
}

// Len returns the number of admitted messages.
func (c *MessageChain) Len() int { return len(c.messages) }

// IsEmpty reports whether the chain has no admitted messages.
func (c *MessageChain) IsEmpty() bool { return len(c.messages) == 0 }

// ChainHash returns the current running chain hash.
func (c *MessageChain) ChainHash() [32]byte { return c.chainHash }

// Messages returns a copy of the admitted messages in admission order.
// MessageChain retains exclusive ownership of its own backing array, so
// mutating the returned slice can never desynchronize ChainHash from
// the messages it was folded over.
func (c *MessageChain) Messages() []Message {
	return append([]Message(nil), c.messages...)
}
