package middlewarectx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/supportiq/entitlement-service/internal/http/response"
)

// SharedSecretMiddleware авторизует служебные вызовы (sweep от внешнего
// планировщика, вебхук биллинга) по общему секрету в заголовке header.
// Пустой настроенный секрет не открывает конечную точку: все запросы
// отклоняются, пока секрет не задан в конфигурации.
func SharedSecretMiddleware(header, secret string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				log.Error("shared secret is not configured", slog.String("header", header))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			got := r.Header.Get(header)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				log.Error("invalid shared secret", slog.String("header", header))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
