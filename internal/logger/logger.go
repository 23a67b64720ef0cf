// Package logger builds the zap logger shared by the lessonkit commands.
package logger

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects encoder, level and sinks.
type Options struct {
	// Mode is "dev" (console encoder) or "prod" (JSON encoder).
	Mode string
	// Level is a zap level name: debug, info, warn, error.
	Level string
	// Writer receives log output, usually stderr.
	Writer io.Writer
	// File, when set, also writes JSON logs to a rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	closers       []io.Closer
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level))
	if opts.Level == "" {
		level, err = zapcore.InfoLevel, nil
	}
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "dev", "development":
		encCfg = zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("log mode %q: want dev or prod", opts.Mode)
	}

	var cores []zapcore.Core
	if opts.Writer != nil {
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(opts.Writer), level))
	}

	l := &Logger{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			Compress:   true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(lj), level))
		l.closers = append(l.closers, lj)
	}

	if len(cores) == 0 {
		return Nop(), nil
	}
	l.SugaredLogger = zap.New(zapcore.NewTee(cores...)).Sugar()
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// Sync flushes buffered entries and closes file sinks.
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
	for _, c := range l.closers {
		_ = c.Close()
	}
	l.closers = nil
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

// sanitizeKVs masks credentials in values whose key names a connection
// string or secret.
func sanitizeKVs(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key, _ := kv[i].(string)
		out = append(out, kv[i], sanitizeValue(strings.ToLower(key), kv[i+1]))
	}
	return out
}

func sanitizeValue(key string, val interface{}) interface{} {
	switch {
	case strings.Contains(key, "password"),
		strings.Contains(key, "secret"),
		strings.Contains(key, "api_key"),
		strings.Contains(key, "apikey"):
		return "[REDACTED]"
	case strings.Contains(key, "dsn"):
		if s, ok := val.(string); ok {
			return RedactDSN(s)
		}
	}
	return val
}

// RedactDSN hides the password part of URL-style and key=value connection
// strings.
//
//	postgres://u:pw@h/db        -> postgres://u:***@h/db
//	server=h;password=pw;db=x   -> server=h;password=***;db=x
func RedactDSN(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		rest := dsn[i+3:]
		at := strings.LastIndex(rest, "@")
		if at < 0 {
			return dsn
		}
		userinfo := rest[:at]
		if c := strings.Index(userinfo, ":"); c >= 0 {
			return dsn[:i+3] + userinfo[:c] + ":***" + rest[at:]
		}
		return dsn
	}

	parts := strings.Split(dsn, ";")
	for j, p := range parts {
		k, _, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "password", "pwd":
			parts[j] = k + "=***"
		}
	}
	return strings.Join(parts, ";")
}
