package main

import (
	"context"
	"fmt"
	"log"

	"github.com/textiq/textiq/internal/config"
	"github.com/textiq/textiq/internal/history"
	"github.com/textiq/textiq/internal/providers"
	"github.com/textiq/textiq/internal/responder"
	"github.com/textiq/textiq/internal/session"
)

type runtimeEnv struct {
	Controller  *session.Controller
	Configured  bool
	Provider    string
	HistoryPath string
	Watcher     *history.Watcher
	ConfigMgr   *config.Manager

	closers []func() error
}

func (r *runtimeEnv) Close() {
	for _, c := range r.closers {
		if err := c(); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

// prepareRuntimeEnv resolves configuration, builds the history
// repository and LLM client, and wires the session controller.
// Flag values override the persisted config; credentials from the
// environment override both.
func prepareRuntimeEnv(ctx context.Context, providerFlag, backendFlag, historyFlag string) (*runtimeEnv, error) {
	cfgManager, err := config.NewManager()
	var userConfig *config.Config
	if err == nil {
		userConfig, err = cfgManager.Load()
		if err != nil {
			log.Printf("⚠️  Failed to load user config: %v", err)
			userConfig = &config.Config{}
		}
	} else {
		log.Printf("⚠️  Failed to initialize config manager: %v", err)
		userConfig = &config.Config{}
	}

	provider := providerFlag
	if provider == "" {
		provider = userConfig.Provider
	}
	if provider == "" {
		provider = "gemini"
	}

	apiKey, fromEnv := config.CredentialFromEnv(provider)
	if !fromEnv {
		apiKey = userConfig.APIKey
	}
	configured := config.Plausible(apiKey)

	var client providers.LLMClient
	if configured {
		client, err = providers.NewClient(provider, apiKey)
		if err != nil {
			return nil, fmt.Errorf("build %s client: %w", provider, err)
		}
	}

	backend := backendFlag
	if backend == "" {
		backend = userConfig.HistoryBackend
	}
	historyPath := historyFlag
	if historyPath == "" {
		historyPath = userConfig.HistoryPath
	}

	env := &runtimeEnv{
		Configured: configured,
		Provider:   provider,
		ConfigMgr:  cfgManager,
	}

	var repo history.Repository
	switch backend {
	case "", "file":
		if historyPath == "" {
			historyPath = config.DefaultHistoryFile
		}
		store := history.NewFileStore(historyPath)
		repo = store
		env.HistoryPath = historyPath

		// The JSON file may be rewritten by other processes. Watch it
		// so long-lived sessions can tell the user the archive moved
		// under them.
		watcher, werr := history.NewWatcher(historyPath)
		if werr != nil {
			log.Printf("⚠️  History watcher unavailable: %v", werr)
		} else {
			env.Watcher = watcher
			env.closers = append(env.closers, watcher.Stop)
		}
	case "sqlite":
		if historyPath == "" {
			historyPath = "chat_history.db"
		}
		store, serr := history.NewSQLiteStore(ctx, historyPath)
		if serr != nil {
			return nil, fmt.Errorf("open sqlite history: %w", serr)
		}
		repo = store
		env.HistoryPath = historyPath
		env.closers = append(env.closers, store.Close)
	default:
		return nil, fmt.Errorf("unknown history backend: %q", backend)
	}

	ctrl := session.NewController(repo, responder.New(client, configured))
	if userConfig.Mode != "" {
		if merr := ctrl.SetMode(userConfig.Mode); merr != nil {
			log.Printf("⚠️  Ignoring configured mode: %v", merr)
		}
	}
	env.Controller = ctrl

	return env, nil
}
