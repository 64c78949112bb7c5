package chat

// Conversation holds the turns of the chat currently being edited.
// It is mutated only by appending (or wholesale replacement when an
// archived chat is loaded) and assumes a single active mutator: one
// logical session, one action handled at a time.
type Conversation struct {
	turns []Turn
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(t Turn) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.turns = append(c.turns, t)
	return nil
}

// Clear resets the conversation to an empty sequence. Idempotent.
func (c *Conversation) Clear() {
	c.turns = nil
}

// Replace swaps the conversation contents for the given turns.
// Makes a defensive copy so later mutation of the argument cannot
// leak into the conversation.
func (c *Conversation) Replace(turns []Turn) {
	c.turns = make([]Turn, len(turns))
	copy(c.turns, turns)
}

// Snapshot returns a copy of the full ordered turn sequence.
func (c *Conversation) Snapshot() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}
