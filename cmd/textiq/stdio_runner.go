package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/textiq/textiq/internal/config"
	"github.com/textiq/textiq/internal/history"
	"github.com/textiq/textiq/internal/protocol"
)

func runStdIO(ctx context.Context, env *runtimeEnv) error {
	log.Println("🔌 Starting stdio bridge (--stdio)")
	runner := newStdIORunner(os.Stdin, os.Stdout, env)
	runner.emitEvent(protocol.NewStatusEvent("", "ready", "stdio protocol ready"))
	if !env.Configured {
		runner.emitEvent(protocol.NewSetupRequiredEvent())
	}
	return runner.Run(ctx)
}

type stdioRunner struct {
	scanner *bufio.Scanner
	writer  *bufio.Writer
	events  chan protocol.Event
	env     *runtimeEnv

	sessionID string

	mu     sync.Mutex
	closed bool
}

func newStdIORunner(in io.Reader, out io.Writer, env *runtimeEnv) *stdioRunner {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	return &stdioRunner{
		scanner: scanner,
		writer:  bufio.NewWriter(out),
		events:  make(chan protocol.Event, 256),
		env:     env,
	}
}

func (r *stdioRunner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.env.Watcher != nil {
		r.env.Watcher.OnChange(func() {
			r.emitEvent(protocol.NewHistoryChangedEvent(r.sessionID))
		})
		if err := r.env.Watcher.Start(); err != nil {
			log.Printf("⚠️  History watcher failed to start: %v", err)
		}
	}

	errCh := make(chan error, 1)
	go r.flushEvents(ctx, errCh)

	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		// Commands run synchronously: one action to completion before
		// the next line is read, so events never interleave between
		// commands.
		if err := r.handleLine(ctx, line); err != nil {
			log.Printf("stdio command error: %v", err)
		}
	}

	if err := r.scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		r.emitEvent(protocol.NewErrorEvent("", fmt.Sprintf("stdin error: %v", err), "protocol_error"))
	}

	// The watcher callback emits into r.events from its own goroutine.
	// Join it before closing the channel or a late history-file event
	// would send on a closed channel.
	if r.env.Watcher != nil {
		if err := r.env.Watcher.Stop(); err != nil {
			log.Printf("⚠️  History watcher stop: %v", err)
		}
	}

	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	close(r.events)
	return <-errCh
}

func (r *stdioRunner) flushEvents(ctx context.Context, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			errCh <- nil
			return
		case ev, ok := <-r.events:
			if !ok {
				errCh <- r.writer.Flush()
				return
			}
			if err := r.writeEvent(ev); err != nil {
				errCh <- err
				return
			}
		}
	}
}

func (r *stdioRunner) writeEvent(ev protocol.Event) error {
	payload, err := protocol.MarshalEvent(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := r.writer.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return r.writer.Flush()
}

func (r *stdioRunner) emitEvent(ev protocol.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- ev:
	default:
		log.Printf("stdio: dropping event %s due to full buffer", ev.GetType())
	}
}

// emitState reprojects the full session state so the UI can render
// without tracking deltas.
func (r *stdioRunner) emitState() {
	s := r.env.Controller.Settings()
	r.emitEvent(protocol.NewStateEvent(
		r.sessionID,
		s.SystemPrompt,
		s.Mode,
		s.Temperature,
		string(s.Theme),
		string(s.Panel),
		r.env.Controller.Snapshot(),
	))
}

func (r *stdioRunner) handleLine(ctx context.Context, line string) error {
	cmd, err := protocol.DecodeCommand([]byte(line))
	if err != nil {
		r.emitEvent(protocol.NewErrorEvent(r.sessionID, err.Error(), "invalid_command"))
		return err
	}

	ctrl := r.env.Controller

	switch c := cmd.(type) {
	case protocol.StartSessionCommand:
		if c.SessionID != "" {
			r.sessionID = c.SessionID
		} else {
			r.sessionID = protocol.NewSessionID()
		}
		r.emitEvent(protocol.NewStatusEvent(r.sessionID, "session_ready", fmt.Sprintf("provider=%s history=%s", r.env.Provider, r.env.HistoryPath)))
		if !r.env.Configured {
			r.emitEvent(protocol.NewSetupRequiredEvent())
		}
		r.emitState()

	case protocol.SendMessageCommand:
		reply, serr := ctrl.Send(ctx, c.Message)
		if serr != nil {
			r.emitEvent(protocol.NewErrorEvent(c.SessionID, serr.Error(), "send_failed"))
			return serr
		}
		r.emitEvent(protocol.NewAssistantTextEvent(c.SessionID, reply, c.RequestID))
		r.emitState()

	case protocol.NewChatCommand:
		archived, nerr := ctrl.NewChat()
		if nerr != nil {
			r.emitEvent(protocol.NewErrorEvent(c.SessionID, nerr.Error(), "archive_failed"))
			return nerr
		}
		if archived {
			r.emitEvent(protocol.NewStatusEvent(c.SessionID, "chat_archived", ""))
		}
		r.emitState()

	case protocol.LoadChatCommand:
		if lerr := ctrl.LoadChat(c.ChatID); lerr != nil {
			code := "load_failed"
			if errors.Is(lerr, history.ErrNotFound) {
				code = "not_found"
			}
			r.emitEvent(protocol.NewErrorEvent(c.SessionID, lerr.Error(), code))
			return lerr
		}
		r.emitState()

	case protocol.DeleteChatCommand:
		if derr := ctrl.DeleteChat(c.ChatID); derr != nil {
			r.emitEvent(protocol.NewErrorEvent(c.SessionID, derr.Error(), "delete_failed"))
			return derr
		}
		return r.emitHistoryList(c.SessionID)

	case protocol.ClearChatCommand:
		ctrl.ClearChat()
		r.emitState()

	case protocol.ListHistoryCommand:
		return r.emitHistoryList(c.SessionID)

	case protocol.SearchHistoryCommand:
		limit := c.Limit
		if limit <= 0 {
			limit = 10
		}
		results, serr := ctrl.SearchChats(c.Query, limit)
		if serr != nil {
			r.emitEvent(protocol.NewErrorEvent(c.SessionID, serr.Error(), "search_failed"))
			return serr
		}
		hits := make([]protocol.SearchHit, 0, len(results))
		for _, res := range results {
			hits = append(hits, protocol.SearchHit{
				ID:        res.ID,
				Title:     res.Title,
				Timestamp: res.Timestamp,
				Score:     res.Score,
			})
		}
		r.emitEvent(protocol.NewSearchResultsEvent(c.SessionID, c.Query, hits))

	case protocol.SetSettingsCommand:
		if c.SystemPrompt != nil {
			ctrl.SetSystemPrompt(*c.SystemPrompt)
		}
		if c.Mode != nil {
			if merr := ctrl.SetMode(*c.Mode); merr != nil {
				r.emitEvent(protocol.NewErrorEvent(c.SessionID, merr.Error(), "invalid_mode"))
				return merr
			}
		}
		if c.Temperature != nil {
			ctrl.SetTemperature(*c.Temperature)
		}
		r.emitState()

	case protocol.ToggleThemeCommand:
		ctrl.ToggleTheme()
		r.emitState()

	case protocol.TogglePanelCommand:
		if c.Panel == "settings" {
			ctrl.ToggleSettings()
		} else {
			ctrl.ToggleHistory()
		}
		r.emitState()

	case protocol.GetConfigCommand:
		if r.env.ConfigMgr == nil {
			r.emitEvent(protocol.NewConfigLoadedEvent(map[string]string{}))
			return nil
		}
		cfg, lerr := r.env.ConfigMgr.Load()
		if lerr != nil {
			r.emitEvent(protocol.NewErrorEvent("", lerr.Error(), "config_error"))
			return lerr
		}
		r.emitEvent(protocol.NewConfigLoadedEvent(configToMap(cfg)))

	case protocol.SaveConfigCommand:
		if r.env.ConfigMgr == nil {
			err := errors.New("config directory unavailable")
			r.emitEvent(protocol.NewErrorEvent("", err.Error(), "config_error"))
			return err
		}
		cfg := configFromMap(c.Config)
		if serr := r.env.ConfigMgr.Save(cfg); serr != nil {
			r.emitEvent(protocol.NewErrorEvent("", serr.Error(), "config_error"))
			return serr
		}
		r.emitEvent(protocol.NewStatusEvent("", "config_saved", "restart to apply provider changes"))

	default:
		r.emitEvent(protocol.NewErrorEvent(r.sessionID, fmt.Sprintf("unhandled command: %s", cmd.GetType()), "invalid_command"))
	}

	return nil
}

func (r *stdioRunner) emitHistoryList(sessionID string) error {
	chats, err := r.env.Controller.ListChats()
	if err != nil {
		r.emitEvent(protocol.NewErrorEvent(sessionID, err.Error(), "history_error"))
		return err
	}
	// Stored oldest first; the sidebar shows newest first.
	summaries := make([]protocol.ChatSummary, 0, len(chats))
	for i := len(chats) - 1; i >= 0; i-- {
		summaries = append(summaries, protocol.ChatSummary{
			ID:        chats[i].ID,
			Timestamp: chats[i].Timestamp,
			Title:     chats[i].Title,
		})
	}
	r.emitEvent(protocol.NewHistoryListEvent(sessionID, summaries))
	return nil
}

func configToMap(cfg *config.Config) map[string]string {
	return map[string]string{
		"provider":        cfg.Provider,
		"api_key":         cfg.APIKey,
		"mode":            cfg.Mode,
		"history_backend": cfg.HistoryBackend,
		"history_path":    cfg.HistoryPath,
	}
}

func configFromMap(m map[string]string) *config.Config {
	return &config.Config{
		Provider:       m["provider"],
		APIKey:         m["api_key"],
		Mode:           m["mode"],
		HistoryBackend: m["history_backend"],
		HistoryPath:    m["history_path"],
	}
}
