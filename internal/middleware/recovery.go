package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/models"
)

// Recovery turns a handler panic into a 500 carrying the request ID, so a
// broken inspector route never takes the chat process down with it.
// http.ErrAbortHandler is re-raised for net/http to handle.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			id := GetRequestID(r.Context())
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", id).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("inspector handler panicked")

			msg := "internal server error"
			if id != "" {
				msg += " (request " + id + ")"
			}
			models.WriteError(w, http.StatusInternalServerError, msg)
		}()
		next.ServeHTTP(w, r)
	})
}
