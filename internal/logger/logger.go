package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

func SetLevel(l Level) {
	level.Store(int32(l))
}

// ParseLevel maps "debug", "info" and "error" to a Level; anything else is LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	}
	return LevelInfo
}

func enabled(l Level) bool {
	return Level(level.Load()) <= l
}

func Debug(ctx context.Context, msg string, kv ...any) {
	if enabled(LevelDebug) {
		write("DEBUG", msg, kv)
	}
}

func Info(ctx context.Context, msg string, kv ...any) {
	if enabled(LevelInfo) {
		write("INFO", msg, kv)
	}
}

// Error logs msg with err appended after a colon. err may be nil.
func Error(ctx context.Context, err error, msg string, kv ...any) {
	if !enabled(LevelError) {
		return
	}
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	write("ERROR", msg, kv)
}

func write(tag, msg string, kv []any) {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(tag)
	b.WriteString("] ")
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		b.WriteString(" ")
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v=?", kv[i])
		}
	}
	log.Print(b.String())
}
