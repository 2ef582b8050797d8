package domain

import "time"

// MessageKind identifies the intent of a message.
type MessageKind string

const (
	MsgPathReady       MessageKind = "path_ready"
	MsgNoPathAvailable MessageKind = "no_path_available"
	MsgTakeDamage      MessageKind = "take_damage"
	MsgItemGone        MessageKind = "item_gone"
	MsgPossess         MessageKind = "possess"
	MsgRelease         MessageKind = "release"
	MsgOpenDoor        MessageKind = "open_door"
)

// Message is a small tagged record delivered to an agent's goal tree.
// Payload is optional and its type depends on Kind.
type Message struct {
	Kind     MessageKind `json:"kind"`
	Sender   string      `json:"sender,omitempty"`
	Receiver string      `json:"receiver"`
	Payload  any         `json:"payload,omitempty"`
	// DispatchAt is zero for immediate delivery.
	DispatchAt time.Time `json:"dispatch_at,omitempty"`
}

// PayloadInt reads an integer payload. Numbers decoded from JSON arrive as
// float64 and are accepted when integral.
func PayloadInt(p any) (int, bool) {
	switch v := p.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// PayloadFloat reads a numeric payload.
func PayloadFloat(p any) (float64, bool) {
	switch v := p.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
