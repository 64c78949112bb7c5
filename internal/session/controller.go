// Package session holds the single stateful orchestrator: an explicit
// session object reconciling user actions against the message store
// and the history repository. One action is handled to completion
// before the next is accepted; a slow inference call blocks the
// session until it returns or fails.
package session

import (
	"context"
	"fmt"

	"github.com/textiq/textiq/internal/chat"
	"github.com/textiq/textiq/internal/config"
	"github.com/textiq/textiq/internal/history"
	"github.com/textiq/textiq/internal/responder"
)

// Controller owns the active conversation and the session settings,
// and decides when the response generator runs.
type Controller struct {
	conv      *chat.Conversation
	settings  Settings
	repo      history.Repository
	responder *responder.Responder
}

// NewController creates a session with documented defaults and an
// empty conversation.
func NewController(repo history.Repository, r *responder.Responder) *Controller {
	return &Controller{
		conv:      chat.NewConversation(),
		settings:  DefaultSettings(),
		repo:      repo,
		responder: r,
	}
}

// Send appends the user's message, generates the assistant's reply
// with the session's current settings, appends it, and returns it.
// Generation failures arrive as advisory reply text, not as errors;
// the only error here is an invalid (empty) message.
func (c *Controller) Send(ctx context.Context, text string) (string, error) {
	if err := c.conv.Append(chat.Turn{Role: chat.RoleUser, Content: text}); err != nil {
		return "", err
	}

	model := config.Modes[c.settings.Mode]
	reply := c.responder.Generate(ctx, c.conv.Snapshot(), c.settings.SystemPrompt, model, c.settings.Temperature)

	if err := c.conv.Append(chat.Turn{Role: chat.RoleAssistant, Content: reply}); err != nil {
		return "", err
	}
	return reply, nil
}

// NewChat archives the current conversation if it is non-empty, then
// clears it. Returns whether a new archive record was created. When
// archiving fails the in-memory conversation is left intact so nothing
// is lost; the error is surfaced for inline display.
func (c *Controller) NewChat() (bool, error) {
	if c.conv.Len() == 0 {
		return false, nil
	}
	if err := c.repo.Append(c.conv.Snapshot()); err != nil {
		return false, fmt.Errorf("failed to save chat: %w", err)
	}
	c.conv.Clear()
	return true, nil
}

// LoadChat replaces the active conversation wholesale with the
// archived chat's turns. The current unsaved conversation is discarded
// WITHOUT archiving. This data loss is intentional and mirrors the
// explicit load action, but it is real.
func (c *Controller) LoadChat(id string) error {
	turns, err := c.repo.Load(id)
	if err != nil {
		return err
	}
	c.conv.Replace(turns)
	return nil
}

// DeleteChat removes an archived chat. The active conversation is
// unaffected; unknown ids are a no-op.
func (c *Controller) DeleteChat(id string) error {
	return c.repo.Delete(id)
}

// ClearChat discards the active conversation without archiving it.
func (c *Controller) ClearChat() {
	c.conv.Clear()
}

// ListChats returns the archive in storage-insertion order. Callers
// reverse it for newest-first display.
func (c *Controller) ListChats() ([]history.ArchivedChat, error) {
	return c.repo.List()
}

// SearchChats runs a full-text query over the archive.
func (c *Controller) SearchChats(query string, limit int) ([]history.SearchResult, error) {
	chats, err := c.repo.List()
	if err != nil {
		return nil, err
	}
	return history.SearchChats(chats, query, limit)
}

// Snapshot returns the active conversation's turns.
func (c *Controller) Snapshot() []chat.Turn {
	return c.conv.Snapshot()
}

// Settings returns the current session configuration.
func (c *Controller) Settings() Settings {
	return c.settings
}

// SetSystemPrompt replaces the system instruction.
func (c *Controller) SetSystemPrompt(prompt string) {
	c.settings.SystemPrompt = prompt
}

// SetMode selects a named model mode.
func (c *Controller) SetMode(name string) error {
	if _, ok := config.Modes[name]; !ok {
		return fmt.Errorf("unknown mode: %q", name)
	}
	c.settings.Mode = name
	return nil
}

// SetTemperature clamps and stores the sampling temperature.
func (c *Controller) SetTemperature(t float32) {
	c.settings.SetTemperature(t)
}

// ToggleTheme flips the presentation theme.
func (c *Controller) ToggleTheme() {
	c.settings.ToggleTheme()
}

// ToggleSettings toggles the settings panel.
func (c *Controller) ToggleSettings() {
	c.settings.ToggleSettings()
}

// ToggleHistory toggles the history panel.
func (c *Controller) ToggleHistory() {
	c.settings.ToggleHistory()
}
