// Package logger is a thin zerolog wrapper shared by all packages.
//
// Child loggers carry the call context in fixed fields:
// sid (session), peer, role and the signaling direction d.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Level int8

const (
	TraceLevel Level = iota - 1
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	Disabled Level = 7
)

// Common field names.
const (
	SessionField = "sid"
	PeerField    = "peer"
	RoleField    = "role"
	// DirectionField shows the signaling direction: → out, ← in, x closed.
	DirectionField = "d"
	tagField       = "s"
)

type Logger struct {
	logger *zerolog.Logger
}

// New makes a JSON logger writing into stderr.
func New(isDebug bool) *Logger {
	setLevel(isDebug)
	return wrap(zerolog.New(os.Stderr).With().Timestamp().Logger())
}

// NewConsole makes a human-friendly logger that shows
// the tag and the context fields before the message.
func NewConsole(isDebug bool, tag string, noColor bool) *Logger {
	setLevel(isDebug)
	context := []string{tagField, DirectionField, SessionField, PeerField}
	out := zerolog.ConsoleWriter{
		Out:           os.Stdout,
		NoColor:       noColor,
		TimeFormat:    "15:04:05.000",
		PartsOrder:    append([]string{zerolog.TimestampFieldName, zerolog.LevelFieldName}, append(context, zerolog.MessageFieldName)...),
		FieldsExclude: context,
	}
	return wrap(zerolog.New(out).With().Timestamp().Str(tagField, tag).Str(DirectionField, " ").Logger())
}

// NewWriter makes a JSON logger into w.
func NewWriter(w io.Writer) *Logger { return wrap(zerolog.New(w).With().Timestamp().Logger()) }

// Nop returns a logger that discards everything.
func Nop() *Logger { return wrap(zerolog.Nop()) }

// Default returns the global zerolog logger.
func Default() *Logger { return &Logger{logger: &log.Logger} }

func wrap(l zerolog.Logger) *Logger { return &Logger{logger: &l} }

func setLevel(isDebug bool) {
	if isDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// GetLevel returns the effective level of l.
func (l *Logger) GetLevel() Level {
	return Level(max(l.logger.GetLevel(), zerolog.GlobalLevel()))
}

// With creates a child logger context, see Extend.
func (l *Logger) With() zerolog.Context { return l.logger.With() }

// Level creates a child logger with the minimum accepted level set to level.
func (l *Logger) Level(level zerolog.Level) zerolog.Logger { return l.logger.Level(level) }

// Extend makes a logger out of a child context, as in
//
//	log.Extend(log.With().Str(logger.PeerField, id))
func (l *Logger) Extend(ctx zerolog.Context) *Logger { return wrap(ctx.Logger()) }

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// Fatal logs the message and calls os.Exit(1).
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }
