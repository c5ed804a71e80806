// Package logging sets up the process logger and the HTTP request logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// levelWriter sends info and warn events to stdout and error events to
// stderr. Every event is also copied to file when one is set.
type levelWriter struct {
	stdout io.Writer
	stderr io.Writer
	file   io.Writer
}

func (w *levelWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	out := w.stdout
	if level >= zerolog.ErrorLevel && level <= zerolog.PanicLevel {
		out = w.stderr
	}

	n, err := out.Write(p)
	if w.file != nil {
		if _, ferr := w.file.Write(p); err == nil {
			err = ferr
		}
	}
	return n, err
}

// New builds a logger at the given level over stdout and stderr. If path is
// non-empty all levels are also appended to that file. The returned cleanup
// closes the file and is never nil.
func New(level, path string, stdout, stderr io.Writer) (zerolog.Logger, func(), error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("parsing log level: %w", err)
		}
	}

	w := &levelWriter{stdout: stdout, stderr: stderr}
	cleanup := func() {}

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), cleanup, fmt.Errorf("opening log file: %w", err)
		}
		w.file = f
		cleanup = func() { f.Close() }
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return logger, cleanup, nil
}

// GinLogger logs each request once it has been handled. Server errors are
// logged at error level and client errors at warn.
func GinLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.Str("method", c.Request.Method).
			Str("path", c.Request.URL.RequestURI()).
			Int("status", status).
			Dur("latency", time.Since(start).Round(time.Millisecond)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", id).
			Msg("request")
	}
}
