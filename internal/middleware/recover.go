package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover turns a handler panic into a logged 500 with a JSON body.
// http.ErrAbortHandler keeps its meaning and is re-raised.
func Recover(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
						panic(rec)
					}
					reportPanic(logger, r, rec)
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func reportPanic(logger zerolog.Logger, r *http.Request, rec any) {
	logger.Error().
		Str("rid", GetRequestID(r)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("panic", fmt.Sprint(rec)).
		Bytes("stack", debug.Stack()).
		Msg("panic recovered")
}
