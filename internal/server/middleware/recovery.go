package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// InternalErrorMessage возвращается клиенту после паники
const InternalErrorMessage = "Internal error"

// RecoveryMiddleware создает middleware для восстановления после паники.
// Перехватывает panic, логирует стек и отвечает JSON ошибкой со статусом 500.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error("Panic recovered",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
						"stack", string(debug.Stack()),
					)

					// Детали паники клиенту не раскрываем
					writeJSONError(w, http.StatusInternalServerError, InternalErrorMessage)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSONError пишет тело {"error": message}
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
