package middleware

import (
	"JackTrack/internal/auth"
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const deviceKey ctxKey = iota

// WithAuth требует заголовок Authorization: Bearer <jwt>. Пустой secret отключает проверку.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			device, err := auth.GetDeviceFromToken(token, []byte(secret))
			if err != nil {
				sugar.Warnw("rejected token", "uri", r.RequestURI, "error", err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), deviceKey, device)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDeviceFromContext возвращает имя устройства, если запрос прошёл WithAuth.
func GetDeviceFromContext(ctx context.Context) (string, bool) {
	d, ok := ctx.Value(deviceKey).(string)
	return d, ok
}
