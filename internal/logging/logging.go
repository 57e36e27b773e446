// Package logging builds the structured loggers used across encdec from
// LogConfig. The returned level can be changed at runtime by a configuration
// reload without rebuilding handlers.
//
// Package logging 根据LogConfig构建encdec使用的结构化日志记录器。
// 返回的日志级别可以在配置重载时动态修改，无需重建处理器。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/yourusername/encdec/configs"
)

// Logger pairs a slog.Logger with its adjustable level and the closer of
// the underlying output, if any.
//
// Logger 将slog.Logger与其可调级别以及底层输出的关闭器组合在一起。
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// New creates a Logger from the given configuration.
//
// New 根据给定配置创建Logger。
//
// Parameters:
//   - cfg: Logging configuration
//
// Returns:
//   - *Logger: The configured logger
//   - error: An error if the level or format is unknown or the log file cannot be opened
func New(cfg configs.LogConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var (
		out    io.Writer
		closer io.Closer
	)
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	l, err := NewWithWriter(out, cfg.Format, level)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	l.closer = closer
	return l, nil
}

// NewWithWriter creates a Logger writing to w. Format "auto" picks text for
// terminals and JSON otherwise.
//
// NewWithWriter 创建写入w的Logger。格式"auto"在终端上使用文本，否则使用JSON。
func NewWithWriter(w io.Writer, format string, level slog.Level) (*Logger, error) {
	lv := new(slog.LevelVar)
	lv.Set(level)
	options := &slog.HandlerOptions{Level: lv}

	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "text"
		}
	}

	var handler slog.Handler
	switch format {
	case "", "text":
		handler = slog.NewTextHandler(w, options)
	case "json":
		handler = slog.NewJSONHandler(w, options)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return &Logger{Logger: slog.New(handler), level: lv}, nil
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	lv := new(slog.LevelVar)
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: lv})),
		level:  lv,
	}
}

// SetLevel changes the minimum level of records written.
//
// SetLevel 修改写入记录的最低级别。
func (l *Logger) SetLevel(level string) error {
	lv, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.Set(lv)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file, if one was opened.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLevel converts debug, info, warn or error to a slog.Level.
// The empty string means info.
//
// ParseLevel 将debug、info、warn或error转换为slog.Level。
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
