package logger

import (
	"github.com/pion/logging"
	"github.com/rs/zerolog"
)

// PionLog is a logging.LoggerFactory that routes pion internal logs
// into the app logger, one child logger per pion scope.
// Quiet scopes never log below the warn level.
type PionLog struct {
	root  *Logger
	level zerolog.Level
	quiet map[string]struct{}
}

const trace = zerolog.Level(TraceLevel)

func NewPionLogger(root *Logger, level int, quiet ...string) *PionLog {
	p := &PionLog{root: root, level: zerolog.Level(level), quiet: make(map[string]struct{}, len(quiet))}
	for _, scope := range quiet {
		p.quiet[scope] = struct{}{}
	}
	return p
}

func (p *PionLog) NewLogger(scope string) logging.LeveledLogger {
	level := p.level
	if _, ok := p.quiet[scope]; ok && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	l := p.root.Level(level).With().Str("mod", scope).Logger()
	return pionScope{&l}
}

type pionScope struct{ *zerolog.Logger }

func (s pionScope) Trace(msg string)                  { s.WithLevel(trace).Msg(msg) }
func (s pionScope) Tracef(format string, args ...any) { s.WithLevel(trace).Msgf(format, args...) }
func (s pionScope) Debug(msg string)                  { s.Logger.Debug().Msg(msg) }
func (s pionScope) Debugf(format string, args ...any) { s.Logger.Debug().Msgf(format, args...) }
func (s pionScope) Info(msg string)                   { s.Logger.Info().Msg(msg) }
func (s pionScope) Infof(format string, args ...any)  { s.Logger.Info().Msgf(format, args...) }
func (s pionScope) Warn(msg string)                   { s.Logger.Warn().Msg(msg) }
func (s pionScope) Warnf(format string, args ...any)  { s.Logger.Warn().Msgf(format, args...) }
func (s pionScope) Error(msg string)                  { s.Logger.Error().Msg(msg) }
func (s pionScope) Errorf(format string, args ...any) { s.Logger.Error().Msgf(format, args...) }
