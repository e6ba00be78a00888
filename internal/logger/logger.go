// Package logger builds the bot's slog logger and the update logging
// middleware.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const previewLength = 50

// redactedCommands carry credentials in their arguments.
var redactedCommands = []string{"/code"}

// NewLogger creates a slog Logger writing to stdout and installs it as the
// default logger. Unknown levels fall back to info.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	logger := New(os.Stdout, levelStr, jsonOutput)
	slog.SetDefault(logger)
	return logger
}

// New creates a slog Logger writing to w.
func New(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a configuration level name to a slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware logs every incoming update. Arguments of credential-bearing
// commands never reach the log.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			logEntry := log.With("update_id", update.ID)

			updateType := "other"
			if update.Message != nil {
				updateType = "message"
				var userID int64
				if update.Message.From != nil {
					userID = update.Message.From.ID
				}
				logEntry = logEntry.With(
					"message_id", update.Message.ID,
					"chat_id", update.Message.Chat.ID,
					"user_id", userID,
					"text_preview", Preview(update.Message.Text),
				)
			}
			logEntry = logEntry.With("update_type", updateType)

			logEntry.DebugContext(ctx, "Processing update")
			next(ctx, b, update)
			logEntry.DebugContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// Preview returns a loggable, truncated form of message text.
func Preview(text string) string {
	return truncateString(redact(text), previewLength)
}

func redact(text string) string {
	for _, cmd := range redactedCommands {
		if text == cmd {
			return text
		}
		if after, ok := strings.CutPrefix(text, cmd); ok {
			// "/code@MyBot args" and "/code args" but not "/codes".
			if after[0] == ' ' || after[0] == '@' || after[0] == '\n' {
				return cmd + " [redacted]"
			}
		}
	}
	return text
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}

// schedulerLogger routes gocron output through slog. gocron reports every
// job run at info, which is demoted to debug to keep the refresh loop quiet.
type schedulerLogger struct {
	log *slog.Logger
}

// NewSchedulerLogger adapts log to the gocron.Logger interface.
//
//nolint:ireturn // gocron.WithLogger takes the interface
func NewSchedulerLogger(log *slog.Logger) gocron.Logger {
	return &schedulerLogger{log: log.With("component", "scheduler")}
}

func (l *schedulerLogger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *schedulerLogger) Info(msg string, args ...any)  { l.log.Debug(msg, args...) }
func (l *schedulerLogger) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *schedulerLogger) Error(msg string, args ...any) { l.log.Error(msg, args...) }
