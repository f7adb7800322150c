package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Logger struct {
	mu    sync.RWMutex
	json  bool
	level Level
	l     *log.Logger
}

type Field struct {
	Key string
	Val any
}

func New(jsonEnabled bool) *Logger {
	return NewWithWriter(os.Stdout, jsonEnabled)
}

func NewWithWriter(w io.Writer, jsonEnabled bool) *Logger {
	return &Logger{
		json:  jsonEnabled,
		level: LevelInfo,
		l:     log.New(w, "", 0),
	}
}

func (lg *Logger) SetJSON(enabled bool) {
	lg.mu.Lock()
	lg.json = enabled
	lg.mu.Unlock()
}

func (lg *Logger) SetLevel(level Level) {
	lg.mu.Lock()
	lg.level = level
	lg.mu.Unlock()
}

func (lg *Logger) Debug(msg string, fields ...Field) {
	lg.print(LevelDebug, msg, fields...)
}

func (lg *Logger) Info(msg string, fields ...Field) {
	lg.print(LevelInfo, msg, fields...)
}

func (lg *Logger) Warn(msg string, fields ...Field) {
	lg.print(LevelWarn, msg, fields...)
}

func (lg *Logger) Error(msg string, fields ...Field) {
	lg.print(LevelError, msg, fields...)
}

func (lg *Logger) print(level Level, msg string, fields ...Field) {
	lg.mu.RLock()
	jsonEnabled, threshold := lg.json, lg.level
	lg.mu.RUnlock()
	if level < threshold {
		return
	}
	if jsonEnabled {
		payload := map[string]any{
			"ts":    time.Now().Format(time.RFC3339),
			"level": level.String(),
			"msg":   msg,
		}
		for _, f := range fields {
			// error values marshal to {} otherwise
			if err, ok := f.Val.(error); ok {
				payload[f.Key] = err.Error()
				continue
			}
			payload[f.Key] = f.Val
		}
		b, _ := json.Marshal(payload)
		lg.l.Println(string(b))
		return
	}
	parts := []string{time.Now().Format(time.RFC3339), strings.ToUpper(level.String()), msg}
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Val))
	}
	lg.l.Println(strings.Join(parts, " "))
}
