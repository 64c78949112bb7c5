package chat

import "fmt"

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are immutable once created;
// ordering within a conversation is append order.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Validate checks that the turn carries a known role and non-empty content.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleAssistant:
		// Valid roles
	default:
		return fmt.Errorf("invalid turn role: %q", t.Role)
	}
	if t.Content == "" {
		return fmt.Errorf("turn content must not be empty")
	}
	return nil
}
