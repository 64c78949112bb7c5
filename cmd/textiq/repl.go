package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/textiq/textiq/internal/config"
	"github.com/textiq/textiq/internal/history"
	"github.com/textiq/textiq/internal/responder"
)

func runREPL(ctx context.Context, env *runtimeEnv) {
	log.Printf("💬 TextIQ ready (provider: %s, history: %s)", env.Provider, env.HistoryPath)
	if !env.Configured {
		// No credential means no chat at all, not degraded chat.
		log.Println(responder.MsgNotConfigured)
		return
	}

	if env.Watcher != nil {
		env.Watcher.OnChange(func() {
			fmt.Println("\n📦 History file changed on disk; /history will show the latest archive")
			fmt.Print("you> ")
		})
		if err := env.Watcher.Start(); err != nil {
			log.Printf("⚠️  History watcher failed to start: %v", err)
		}
	}

	ctrl := env.Controller
	s := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !s.Scan() {
			break
		}
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleSlashCommand(ctx, env, line); quit {
				return
			}
			continue
		}

		reply, err := ctrl.Send(ctx, line)
		if err != nil {
			log.Printf("error: %v", err)
			continue
		}
		fmt.Println(reply)
		fmt.Println()
	}
}

func handleSlashCommand(ctx context.Context, env *runtimeEnv, line string) (quit bool) {
	ctrl := env.Controller
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		printHelp()

	case "/new":
		archived, err := ctrl.NewChat()
		if err != nil {
			log.Printf("archive failed: %v (conversation kept)", err)
			break
		}
		if archived {
			fmt.Println("🗂  Conversation archived; starting fresh")
		} else {
			fmt.Println("Nothing to archive; conversation is empty")
		}

	case "/history":
		chats, err := ctrl.ListChats()
		if err != nil {
			log.Printf("list history: %v", err)
			break
		}
		if len(chats) == 0 {
			fmt.Println("No saved chats yet")
			break
		}
		// Newest last on disk; show newest first like the sidebar.
		for i := len(chats) - 1; i >= 0; i-- {
			c := chats[i]
			fmt.Printf("  %s  %s  %s\n", c.ID, c.Timestamp, c.Title)
		}

	case "/load":
		if arg == "" {
			fmt.Println("usage: /load <chat id>")
			break
		}
		if err := ctrl.LoadChat(arg); err != nil {
			if errors.Is(err, history.ErrNotFound) {
				fmt.Printf("No saved chat with id %s\n", arg)
			} else {
				log.Printf("load chat: %v", err)
			}
			break
		}
		fmt.Printf("Loaded chat %s (%d messages)\n", arg, len(ctrl.Snapshot()))

	case "/delete":
		if arg == "" {
			fmt.Println("usage: /delete <chat id>")
			break
		}
		if err := ctrl.DeleteChat(arg); err != nil {
			log.Printf("delete chat: %v", err)
			break
		}
		fmt.Printf("Deleted %s (if it existed)\n", arg)

	case "/clear":
		ctrl.ClearChat()
		fmt.Println("Conversation cleared (not archived)")

	case "/settings":
		ctrl.ToggleSettings()
		printSettings(env)

	case "/theme":
		ctrl.ToggleTheme()
		fmt.Printf("Theme: %s\n", ctrl.Settings().Theme)

	case "/mode":
		if arg == "" {
			for _, name := range config.ModeNames {
				marker := " "
				if name == ctrl.Settings().Mode {
					marker = "*"
				}
				fmt.Printf(" %s %s (%s)\n", marker, name, config.Modes[name])
			}
			break
		}
		if err := ctrl.SetMode(arg); err != nil {
			fmt.Printf("%v\n", err)
			break
		}
		fmt.Printf("Mode: %s (%s)\n", arg, config.Modes[arg])

	case "/temp":
		if arg == "" {
			fmt.Printf("Temperature: %.2f\n", ctrl.Settings().Temperature)
			break
		}
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			fmt.Printf("Invalid temperature %q\n", arg)
			break
		}
		ctrl.SetTemperature(float32(v))
		fmt.Printf("Temperature: %.2f\n", ctrl.Settings().Temperature)

	case "/prompt":
		if arg == "" {
			fmt.Printf("System prompt: %s\n", ctrl.Settings().SystemPrompt)
			break
		}
		ctrl.SetSystemPrompt(arg)
		fmt.Println("System prompt updated")

	case "/search":
		if arg == "" {
			fmt.Println("usage: /search <query>")
			break
		}
		hits, err := ctrl.SearchChats(arg, 10)
		if err != nil {
			log.Printf("search: %v", err)
			break
		}
		if len(hits) == 0 {
			fmt.Println("No matches")
			break
		}
		for _, h := range hits {
			fmt.Printf("  %s  %s  %s (%.2f)\n", h.ID, h.Timestamp, h.Title, h.Score)
		}

	default:
		fmt.Printf("Unknown command %s (try /help)\n", cmd)
	}

	return false
}

func printSettings(env *runtimeEnv) {
	s := env.Controller.Settings()
	fmt.Printf("  provider:    %s\n", env.Provider)
	fmt.Printf("  mode:        %s (%s)\n", s.Mode, config.Modes[s.Mode])
	fmt.Printf("  temperature: %.2f\n", s.Temperature)
	fmt.Printf("  theme:       %s\n", s.Theme)
	fmt.Printf("  panel:       %s\n", s.Panel)
	fmt.Printf("  prompt:      %s\n", s.SystemPrompt)
}

func printHelp() {
	fmt.Println(`Commands:
  /new             archive the current conversation and start fresh
  /history         list saved chats
  /load <id>       replace the conversation with a saved chat
  /delete <id>     delete a saved chat
  /clear           discard the conversation without archiving
  /search <query>  full-text search over saved chats
  /settings        toggle the settings panel and show current values
  /theme           toggle light/dark theme
  /mode [name]     show or set the model mode
  /temp [value]    show or set the sampling temperature (0 to 1.5)
  /prompt [text]   show or set the system prompt
  /quit            exit`)
}
