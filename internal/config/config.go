package config

import "os"

// DefaultHistoryFile is the history store path used when none is
// configured.
const DefaultHistoryFile = "chat_history.json"

// DefaultSystemPrompt is the assistant personality applied to fresh
// sessions until the user edits it.
const DefaultSystemPrompt = `You are TextIQ, an intelligent AI assistant. You provide clear,
accurate, and helpful responses. You are professional, friendly, and always aim to assist users
in the best way possible.`

// Modes maps the human-readable mode names to the underlying model
// identifiers. This is configuration data, not behavior: swapping a
// model id here changes nothing about the session machinery.
var Modes = map[string]string{
	"Fast Mode":     "gemini-2.5-flash",
	"Powerful Mode": "gemini-2.5-pro",
	"Balanced Mode": "gemini-1.5-flash",
}

// ModeNames lists the modes in display order.
var ModeNames = []string{"Fast Mode", "Powerful Mode", "Balanced Mode"}

const (
	DefaultMode        = "Fast Mode"
	DefaultTemperature = 0.7
	MaxTemperature     = 1.5
)

// minKeyLength is the plausibility floor for API keys; anything
// shorter is treated as not configured at all.
const minKeyLength = 20

// credentialEnvVars maps provider names to the environment variable
// holding their API key.
var credentialEnvVars = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// CredentialFromEnv returns the API key for the given provider and
// whether it counts as configured. An absent or implausibly short key
// reads as not configured; chat is disabled entirely in that case.
func CredentialFromEnv(provider string) (string, bool) {
	if provider == "" {
		provider = "gemini"
	}
	envVar, ok := credentialEnvVars[provider]
	if !ok {
		return "", false
	}
	key := os.Getenv(envVar)
	return key, Plausible(key)
}

// Plausible reports whether a credential string passes the length
// check.
func Plausible(key string) bool {
	return len(key) >= minKeyLength
}
