package linguachat

// Timeline reconciles a point-in-time history snapshot with a live event
// stream. Messages are identified by their server-assigned id; applying
// the same message twice is a no-op, so the combined at-least-once-ish
// sources yield exactly-once observed delivery.
type Timeline struct {
	seen     map[int64]struct{}
	messages []Message
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		seen: make(map[int64]struct{}),
	}
}

// Apply records msg if its id has not been seen yet, preserving arrival
// order for same-timestamp ties. It reports whether the message was new.
func (t *Timeline) Apply(msg Message) bool {
	if _, dup := t.seen[msg.ID]; dup {
		return false
	}
	t.seen[msg.ID] = struct{}{}
	t.messages = append(t.messages, msg)
	return true
}

// Messages returns the reconciled messages in arrival order.
func (t *Timeline) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of distinct messages observed.
func (t *Timeline) Len() int {
	return len(t.messages)
}
