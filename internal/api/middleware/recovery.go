package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kiranshivaraju/listingshield/internal/api/response"
)

// Recovery turns a handler panic into a 500 response. Panics on the
// function endpoints get a bare {"error"} body to match their other failures.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				slog.Error("panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
					"request_id", chimw.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				if isFunctionPath(r.URL.Path) {
					response.Raw(w, http.StatusInternalServerError,
						map[string]string{"error": "An unexpected error occurred"})
					return
				}
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// FunctionsPrefix is the path prefix of the function endpoints.
const FunctionsPrefix = "/functions/v1/"

func isFunctionPath(path string) bool {
	return strings.HasPrefix(path, FunctionsPrefix)
}
