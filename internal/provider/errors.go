package provider

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 300

// StatusError is a non-2xx reply from a provider.
type StatusError struct {
	Code int
	// Body is the response body, truncated to maxErrorBody characters.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// rateLimitWord matches "rate" at the start of a word: "rate limit",
// "rate_limit_error", "Rate exceeded", but not "generate".
var rateLimitWord = regexp.MustCompile(`(?i)\brate`)

// IsRateLimited reports whether err looks like provider rate limiting:
// a 429 status, or "429" or a rate-limit keyword anywhere in the message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || rateLimitWord.MatchString(msg)
}
