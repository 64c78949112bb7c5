package responder

import (
	"errors"
	"strings"
)

var (
	errEmptyConversation = errors.New("conversation is empty")
	errEmptyReply        = errors.New("provider returned an empty reply")
)

// errorTruncateLimit caps how much of an opaque provider error reaches
// the user.
const errorTruncateLimit = 100

// isRateLimit detects quota and rate-limit failures by substring, the
// only signal the provider error taxonomy reliably offers across SDKs.
func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "limit")
}

// errorString formats an opaque error for inline display, truncated to
// its first 100 characters.
func errorString(err error) string {
	msg := err.Error()
	runes := []rune(msg)
	if len(runes) > errorTruncateLimit {
		msg = string(runes[:errorTruncateLimit])
	}
	return "❌ Error: " + msg
}
