// Package mwlogger attaches a request-scoped logger with a request-id to every request
package mwlogger

import (
	"context"
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/helpers"
	"github.com/wb-go/wbf/zlog"
)

type loggerWithRequestID struct{}

// NewMWLogger - обёртка для логирования запросов: каждому запросу присваивается
// request-id (свой или из заголовка X-Request-Id), логгер с ним кладется в контекст
func NewMWLogger(next *ginext.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = helpers.CreateUUID()
		}

		logger := zlog.Logger.With().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		ctx := context.WithValue(r.Context(), loggerWithRequestID{}, logger)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Info().Dur("duration", time.Since(start)).Msg("request handled")
	})
}

// LoggerFromContext extracts the request logger; falls back to the global one
// outside the HTTP path (worker, requeue loop)
func LoggerFromContext(ctx context.Context) zlog.Zerolog {
	if l, ok := ctx.Value(loggerWithRequestID{}).(zlog.Zerolog); ok {
		return l
	}
	return zlog.Logger
}
