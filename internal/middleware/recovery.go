package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/WorldBankfinancials/ledger-api/internal/handler"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

// Recovery converts a handler panic into a 500 so one bad request can't
// take the process down.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logging.FromContext(r.Context()).Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
