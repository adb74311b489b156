package middleware

import (
	"net/http"
	"strings"

	"github.com/fekuna/fleetops-maintenance-service/internal/auth"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens and resolves the acting
// (tenant, user, role) triple into the request context. Token issuance is an
// external concern.
type AuthMiddleware struct {
	secret []byte
	logger logger.Logger
}

func NewAuthMiddleware(secret string, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), logger: log}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "authorization header required", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		var c claims
		token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			m.logger.Debug("rejected token", zap.Error(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if c.TenantID == "" {
			http.Error(w, "token missing tenant", http.StatusUnauthorized)
			return
		}

		actor := &auth.Actor{TenantID: c.TenantID, UserID: c.UserID, Role: c.Role}
		next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
	})
}
