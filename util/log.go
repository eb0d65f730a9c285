package util

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogContext supplies the identifying fields attached to every log entry
// emitted during an operation
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a minimal LogContext for operations with no richer scope
type BasicLogContext struct {
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return "makestac"
}

// SessionID returns a Session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// All logging goes to stderr; stdout is reserved for operator prompts and the
// final item dump.
var logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(levelFromEnv())

func levelFromEnv() zerolog.Level {
	raw, ok := os.LookupEnv(LOG_LEVEL)
	if !ok {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func contextualize(ctx LogContext) *zerolog.Logger {
	contextual := logger.With().Str("app", ctx.AppName()).Str("session", ctx.SessionID()).Logger()
	return &contextual
}

// LogInfo logs an informational message
func LogInfo(ctx LogContext, message string) {
	contextualize(ctx).Info().Msg(message)
}

// LogDebug logs a verbose message, suppressed unless MAKESTAC_LOG_LEVEL=debug
func LogDebug(ctx LogContext, message string) {
	contextualize(ctx).Debug().Msg(message)
}

// LogAlert logs a condition that degrades the result without failing it
func LogAlert(ctx LogContext, message string) {
	contextualize(ctx).Warn().Msg(message)
}

// LogSimpleErr logs an error with its underlying cause and returns an error
// wrapping that cause, so callers can still match it with errors.As
func LogSimpleErr(ctx LogContext, message string, err error) error {
	contextualize(ctx).Error().Err(err).Msg(message)
	return fmt.Errorf("%s: %w", message, err)
}

// Severity classifies audit log entries
type Severity string

// Audit severities
const (
	INFO  Severity = "INFO"
	WARN  Severity = "WARN"
	ERROR Severity = "ERROR"
)

// LogAuditInput describes one audited action: who did what to what
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

// LogAudit writes an audit entry
func LogAudit(ctx LogContext, input LogAuditInput) {
	event := contextualize(ctx).Info()
	if input.Severity == WARN {
		event = contextualize(ctx).Warn()
	} else if input.Severity == ERROR {
		event = contextualize(ctx).Error()
	}
	event.Str("actor", input.Actor).
		Str("action", input.Action).
		Str("actee", input.Actee).
		Msg(input.Message)
}

// Error is an error with both an operator-facing and a log-facing message,
// plus whatever request detail is available
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
}

func (e Error) Error() string {
	return e.SimpleMsg
}

// Log writes the full detail of the error to the debug log path and returns
// the error itself, carrying only the operator-facing message
func (e Error) Log(ctx LogContext, prefix string) error {
	event := contextualize(ctx).Error()
	if e.URL != "" {
		event = event.Str("url", e.URL)
	}
	if e.HTTPStatus != 0 {
		event = event.Int("status", e.HTTPStatus)
	}
	if e.Response != "" {
		event = event.Str("response", e.Response)
	}
	message := e.LogMsg
	if message == "" {
		message = e.SimpleMsg
	}
	if prefix != "" {
		message = prefix + " " + message
	}
	event.Msg(message)
	return e
}
