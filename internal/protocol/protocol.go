// Package protocol defines the NDJSON command/event contract between
// the core and an external presentation layer. Commands arrive one per
// line on stdin; each is handled synchronously to completion, after
// which the full session state is reprojected as a state event.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/textiq/textiq/internal/chat"
)

// CommandType enumerates all supported UI -> core commands.
type CommandType string

const (
	CommandStartSession  CommandType = "start_session"
	CommandSendMessage   CommandType = "send_message"
	CommandNewChat       CommandType = "new_chat"
	CommandLoadChat      CommandType = "load_chat"
	CommandDeleteChat    CommandType = "delete_chat"
	CommandClearChat     CommandType = "clear_chat"
	CommandListHistory   CommandType = "list_history"
	CommandSearchHistory CommandType = "search_history"
	CommandSetSettings   CommandType = "set_settings"
	CommandToggleTheme   CommandType = "toggle_theme"
	CommandTogglePanel   CommandType = "toggle_panel"
	CommandGetConfig     CommandType = "get_config"
	CommandSaveConfig    CommandType = "save_config"
)

// Command is a marker interface implemented by all protocol commands.
type Command interface {
	GetType() CommandType
}

// StartSessionCommand initializes a session.
type StartSessionCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
}

func (c StartSessionCommand) GetType() CommandType { return CommandStartSession }

// SendMessageCommand sends a user chat message.
type SendMessageCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (c SendMessageCommand) GetType() CommandType { return CommandSendMessage }

// NewChatCommand archives the current conversation (if non-empty) and
// starts a fresh one.
type NewChatCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
}

func (c NewChatCommand) GetType() CommandType { return CommandNewChat }

// LoadChatCommand replaces the active conversation with an archived
// one. Any unsaved conversation is discarded.
type LoadChatCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
	ChatID    string      `json:"chat_id"`
}

func (c LoadChatCommand) GetType() CommandType { return CommandLoadChat }

// DeleteChatCommand removes an archived chat.
type DeleteChatCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
	ChatID    string      `json:"chat_id"`
}

func (c DeleteChatCommand) GetType() CommandType { return CommandDeleteChat }

// ClearChatCommand discards the active conversation without archiving.
type ClearChatCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
}

func (c ClearChatCommand) GetType() CommandType { return CommandClearChat }

// ListHistoryCommand requests the archived chat list.
type ListHistoryCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
}

func (c ListHistoryCommand) GetType() CommandType { return CommandListHistory }

// SearchHistoryCommand runs a full-text query over the archive.
type SearchHistoryCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
	Query     string      `json:"query"`
	Limit     int         `json:"limit,omitempty"`
}

func (c SearchHistoryCommand) GetType() CommandType { return CommandSearchHistory }

// SetSettingsCommand mutates session settings. Nil fields are left
// unchanged.
type SetSettingsCommand struct {
	Type         CommandType `json:"type"`
	SessionID    string      `json:"session_id"`
	SystemPrompt *string     `json:"system_prompt,omitempty"`
	Mode         *string     `json:"mode,omitempty"`
	Temperature  *float32    `json:"temperature,omitempty"`
}

func (c SetSettingsCommand) GetType() CommandType { return CommandSetSettings }

// ToggleThemeCommand flips the light/dark theme.
type ToggleThemeCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
}

func (c ToggleThemeCommand) GetType() CommandType { return CommandToggleTheme }

// TogglePanelCommand toggles the settings or history panel. The two
// are mutually exclusive.
type TogglePanelCommand struct {
	Type      CommandType `json:"type"`
	SessionID string      `json:"session_id"`
	Panel     string      `json:"panel"` // "settings" | "history"
}

func (c TogglePanelCommand) GetType() CommandType { return CommandTogglePanel }

// GetConfigCommand requests the persisted configuration.
type GetConfigCommand struct {
	Type CommandType `json:"type"`
}

func (c GetConfigCommand) GetType() CommandType { return CommandGetConfig }

// SaveConfigCommand persists user configuration.
type SaveConfigCommand struct {
	Type   CommandType       `json:"type"`
	Config map[string]string `json:"config"`
}

func (c SaveConfigCommand) GetType() CommandType { return CommandSaveConfig }

type rawCommand struct {
	Type CommandType `json:"type"`
}

// DecodeCommand converts raw JSON into a strongly typed command.
func DecodeCommand(data []byte) (Command, error) {
	var base rawCommand
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}

	switch base.Type {
	case CommandStartSession:
		var cmd StartSessionCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode start_session: %w", err)
		}
		return cmd, nil
	case CommandSendMessage:
		var cmd SendMessageCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode send_message: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("send_message requires session_id")
		}
		if cmd.Message == "" {
			return nil, errors.New("send_message requires message")
		}
		return cmd, nil
	case CommandNewChat:
		var cmd NewChatCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode new_chat: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("new_chat requires session_id")
		}
		return cmd, nil
	case CommandLoadChat:
		var cmd LoadChatCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode load_chat: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("load_chat requires session_id")
		}
		if cmd.ChatID == "" {
			return nil, errors.New("load_chat requires chat_id")
		}
		return cmd, nil
	case CommandDeleteChat:
		var cmd DeleteChatCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode delete_chat: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("delete_chat requires session_id")
		}
		if cmd.ChatID == "" {
			return nil, errors.New("delete_chat requires chat_id")
		}
		return cmd, nil
	case CommandClearChat:
		var cmd ClearChatCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode clear_chat: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("clear_chat requires session_id")
		}
		return cmd, nil
	case CommandListHistory:
		var cmd ListHistoryCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode list_history: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("list_history requires session_id")
		}
		return cmd, nil
	case CommandSearchHistory:
		var cmd SearchHistoryCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode search_history: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("search_history requires session_id")
		}
		if cmd.Query == "" {
			return nil, errors.New("search_history requires query")
		}
		return cmd, nil
	case CommandSetSettings:
		var cmd SetSettingsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode set_settings: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("set_settings requires session_id")
		}
		return cmd, nil
	case CommandToggleTheme:
		var cmd ToggleThemeCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode toggle_theme: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("toggle_theme requires session_id")
		}
		return cmd, nil
	case CommandTogglePanel:
		var cmd TogglePanelCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode toggle_panel: %w", err)
		}
		if cmd.SessionID == "" {
			return nil, errors.New("toggle_panel requires session_id")
		}
		if cmd.Panel != "settings" && cmd.Panel != "history" {
			return nil, fmt.Errorf("toggle_panel requires panel settings or history, got %q", cmd.Panel)
		}
		return cmd, nil
	case CommandGetConfig:
		var cmd GetConfigCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode get_config: %w", err)
		}
		return cmd, nil
	case CommandSaveConfig:
		var cmd SaveConfigCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode save_config: %w", err)
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("unknown command type: %s", base.Type)
	}
}

// NewSessionID generates a new opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// EventType enumerates core -> UI events.
type EventType string

const (
	EventAssistantText  EventType = "assistant_text"
	EventState          EventType = "state"
	EventHistoryList    EventType = "history_list"
	EventSearchResults  EventType = "search_results"
	EventHistoryChanged EventType = "history_changed"
	EventStatus         EventType = "status"
	EventError          EventType = "error"
	EventSetupRequired  EventType = "setup_required"
	EventConfigLoaded   EventType = "config_loaded"
)

// Event is implemented by every outgoing message.
type Event interface {
	isEvent()
	GetType() EventType
}

// MarshalEvent serializes an event into JSON for NDJSON transport.
func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}

type eventBase struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

func (eventBase) isEvent() {}

// GetType implements Event.
func (b eventBase) GetType() EventType { return b.Type }

// AssistantTextEvent carries one assistant reply.
type AssistantTextEvent struct {
	eventBase
	Text      string `json:"text"`
	RequestID string `json:"request_id,omitempty"`
}

// NewAssistantTextEvent builds an assistant_text event.
func NewAssistantTextEvent(sessionID, text, requestID string) AssistantTextEvent {
	return AssistantTextEvent{
		eventBase: eventBase{Type: EventAssistantText, SessionID: sessionID},
		Text:      text,
		RequestID: requestID,
	}
}

// StateEvent reprojects the full session state after a handled
// command.
type StateEvent struct {
	eventBase
	SystemPrompt string      `json:"system_prompt"`
	Mode         string      `json:"mode"`
	Temperature  float32     `json:"temperature"`
	Theme        string      `json:"theme"`
	Panel        string      `json:"panel"`
	Messages     []chat.Turn `json:"messages"`
}

// NewStateEvent builds a state event.
func NewStateEvent(sessionID, systemPrompt, mode string, temperature float32, theme, panel string, messages []chat.Turn) StateEvent {
	return StateEvent{
		eventBase:    eventBase{Type: EventState, SessionID: sessionID},
		SystemPrompt: systemPrompt,
		Mode:         mode,
		Temperature:  temperature,
		Theme:        theme,
		Panel:        panel,
		Messages:     messages,
	}
}

// ChatSummary is the lightweight archived-chat listing for the UI.
type ChatSummary struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// HistoryListEvent carries the archive listing, newest first.
type HistoryListEvent struct {
	eventBase
	Chats []ChatSummary `json:"chats"`
}

// NewHistoryListEvent builds a history_list event.
func NewHistoryListEvent(sessionID string, chats []ChatSummary) HistoryListEvent {
	return HistoryListEvent{
		eventBase: eventBase{Type: EventHistoryList, SessionID: sessionID},
		Chats:     chats,
	}
}

// SearchHit is one search result for the UI.
type SearchHit struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Timestamp string  `json:"timestamp"`
	Score     float64 `json:"score"`
}

// SearchResultsEvent carries full-text hits over the archive.
type SearchResultsEvent struct {
	eventBase
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

// NewSearchResultsEvent builds a search_results event.
func NewSearchResultsEvent(sessionID, query string, hits []SearchHit) SearchResultsEvent {
	return SearchResultsEvent{
		eventBase: eventBase{Type: EventSearchResults, SessionID: sessionID},
		Query:     query,
		Hits:      hits,
	}
}

// HistoryChangedEvent signals that another process rewrote the history
// store.
type HistoryChangedEvent struct {
	eventBase
}

// NewHistoryChangedEvent builds a history_changed event.
func NewHistoryChangedEvent(sessionID string) HistoryChangedEvent {
	return HistoryChangedEvent{eventBase: eventBase{Type: EventHistoryChanged, SessionID: sessionID}}
}

// StatusEvent carries an operational status code and detail.
type StatusEvent struct {
	eventBase
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// NewStatusEvent builds a status event.
func NewStatusEvent(sessionID, status, detail string) StatusEvent {
	return StatusEvent{
		eventBase: eventBase{Type: EventStatus, SessionID: sessionID},
		Status:    status,
		Detail:    detail,
	}
}

// ErrorEvent reports a failed command.
type ErrorEvent struct {
	eventBase
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewErrorEvent builds an error event.
func NewErrorEvent(sessionID, message, code string) ErrorEvent {
	return ErrorEvent{
		eventBase: eventBase{Type: EventError, SessionID: sessionID},
		Message:   message,
		Code:      code,
	}
}

// SetupRequiredEvent tells the UI that no plausible credential is
// configured and chat is disabled.
type SetupRequiredEvent struct {
	eventBase
}

// NewSetupRequiredEvent builds a setup_required event.
func NewSetupRequiredEvent() SetupRequiredEvent {
	return SetupRequiredEvent{eventBase: eventBase{Type: EventSetupRequired}}
}

// ConfigLoadedEvent returns the persisted configuration.
type ConfigLoadedEvent struct {
	eventBase
	Config map[string]string `json:"config"`
}

// NewConfigLoadedEvent builds a config_loaded event.
func NewConfigLoadedEvent(cfg map[string]string) ConfigLoadedEvent {
	return ConfigLoadedEvent{
		eventBase: eventBase{Type: EventConfigLoaded},
		Config:    cfg,
	}
}
