// Package middleware provides the gin middleware used by the encdec server.
//
// Package middleware 提供encdec服务器使用的gin中间件。
package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/encdec/internal/metrics"
)

// RequestLogger returns a middleware that logs one record per request.
// Server errors are logged at error level, client errors at warn level.
//
// RequestLogger 返回为每个请求记录一条日志的中间件。
// 服务器错误以error级别记录，客户端错误以warn级别记录。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("bytes", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}

// BodyLimit caps the request body at n bytes. Reads past the limit fail
// with *http.MaxBytesError, which handlers report as 413.
//
// BodyLimit 将请求体限制为n字节。超出限制的读取返回*http.MaxBytesError，处理程序将其报告为413。
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// Recovery turns panics into a 500 response and logs them.
//
// Recovery 将panic转换为500响应并记录日志。
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// CodecMetrics adds the run counters seen when the request arrived to the
// response headers. Headers must be set before the handler writes the body.
//
// CodecMetrics 将请求到达时的运行计数器添加到响应头中。
func CodecMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if snapshot := m.GetSnapshot(); snapshot != nil {
			c.Header("X-Encdec-Encodes", fmt.Sprintf("%d", snapshot.Encodes))
			c.Header("X-Encdec-Decodes", fmt.Sprintf("%d", snapshot.Decodes))
			c.Header("X-Encdec-Failures", fmt.Sprintf("%d", snapshot.Failures))
		}
		c.Next()
	}
}
