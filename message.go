package zkchat

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kysee/zk-chat/zk"
)

// Message is an immutable chat message record. Hash is the ZK-friendly
// digest of (ID, SenderID, Timestamp, packed Content); a message whose
// Hash field does not match is invalid and must be rejected by every
// consumer.
type Message struct {
	ID        uint64
	SenderID  uint64
	Content   string
	Timestamp uint64
	Hash      [32]byte
}

// NewMessage constructs a Message and fills Hash from ComputeZkHash.
func NewMessage(id, senderID uint64, content string, timestamp uint64) Message {
	return Message{
		ID:        id,
		SenderID:  senderID,
		Content:   content,
		Timestamp: timestamp,
		Hash:      zk.ComputeZkHash(id, senderID, timestamp, content),
	}
}

// WithHash builds a Message from a pre-computed hash, for deserialization
// paths where the hash arrives over the wire rather than being computed.
func WithHash(id, senderID uint64, content string, timestamp uint64, hash [32]byte) Message {
	return Message{ID: id, SenderID: senderID, Content: content, Timestamp: timestamp, Hash: hash}
}

// VerifyHash recomputes the ZK digest and compares it against Hash.
func (m Message) VerifyHash() bool {
	return zk.ComputeZkHash(m.ID, m.SenderID, m.Timestamp, m.Content) == m.Hash
}

func (m Message) String() string {
	return fmt.Sprintf("Message{id: %d, sender: %d, content: %q, timestamp: %d, hash: %s}",
		m.ID, m.SenderID, m.Content, m.Timestamp, hex.EncodeToString(m.Hash[:]))
}

// messageJSON mirrors the wire shape: {id, sender_id, content, timestamp,
// hash} with hash hex-encoded as exactly 64 lowercase hex characters.
type messageJSON struct {
	ID        uint64 `json:"id"`
	SenderID  uint64 `json:"sender_id"`
	Content   string `json:"content"`
	Timestamp uint64 `json:"timestamp"`
	Hash      string `json:"hash"`
}

// MarshalJSON renders the message with Hash hex-encoded.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Hash:      hex.EncodeToString(m.Hash[:]),
	})
}

// UnmarshalJSON parses the wire shape, rejecting any hash that does not
// decode to exactly 32 bytes.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire messageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(wire.Hash)
	if err != nil {
		return fmt.Errorf("zkchat: decode message hash: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("zkchat: message hash must be 32 bytes, got %d", len(decoded))
	}
	var hash [32]byte
	copy(hash[:], decoded)
	*m = Message{
		ID:        wire.ID,
		SenderID:  wire.SenderID,
		Content:   wire.Content,
		Timestamp: wire.Timestamp,
		Hash:      hash,
	}
	return nil
}
