package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bigode/bigode-booking/internal/http/response"
	"github.com/bigode/bigode-booking/pkg/auth"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireAdmin accepts a bearer token signed with secret and stores its
// claims on the request context.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "invalid authorization header")
				return
			}
			raw := strings.TrimPrefix(authz, "Bearer ")
			claims, err := auth.Parse(raw, secret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					response.WriteError(w, http.StatusUnauthorized, "session expired", response.CodeExpiredToken)
					return
				}
				response.WriteError(w, http.StatusUnauthorized, "invalid authorization token", response.CodeInvalidToken)
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			ctx = context.WithValue(ctx, logger.AdminIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
