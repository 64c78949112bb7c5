package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists so GEMINI_API_KEY and friends are
	// picked up without exporting them in the shell.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("textiq", flag.ExitOnError)
	stdioMode := fs.Bool("stdio", false, "Serve over the NDJSON stdio protocol instead of the interactive REPL")
	historyFlag := fs.String("history", "", "Path to the chat history store (default: chat_history.json)")
	backendFlag := fs.String("backend", "", "History backend: file or sqlite (default: file)")
	providerFlag := fs.String("provider", "", "LLM provider: gemini, openai, or anthropic (default: gemini)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	// Redirect logs to stderr in stdio mode to avoid corrupting the protocol
	if *stdioMode {
		log.SetOutput(os.Stderr)
	}

	ctx := context.Background()

	env, err := prepareRuntimeEnv(ctx, *providerFlag, *backendFlag, *historyFlag)
	if err != nil {
		log.Fatalf("failed to prepare runtime environment: %v", err)
	}
	defer env.Close()

	if *stdioMode {
		if err := runStdIO(ctx, env); err != nil {
			log.Fatalf("stdio bridge failed: %v", err)
		}
		return
	}

	runREPL(ctx, env)
}
