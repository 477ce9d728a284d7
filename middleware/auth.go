package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/utils"
)

const (
	// ContextAdminClaimsKey holds *utils.AdminClaims for bearer sessions.
	ContextAdminClaimsKey = "admin_claims"
	// ContextAdminViaKey records how the admin authenticated: "token" or "session".
	ContextAdminViaKey = "admin_via"
	// AdminTokenQuery is the query parameter carrying the shared secret.
	AdminTokenQuery = "token"
)

// AdminRequired lets a request through when it carries the shared secret in
// ?token= or a valid admin session as a bearer token.
func AdminRequired(cfg config.AppConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := ctx.Query(AdminTokenQuery); token != "" {
			if !utils.CheckAdminToken(token, cfg.AdminToken, cfg.AdminTokenHash) {
				utils.AbortError(ctx, http.StatusUnauthorized, 40106, "invalid admin token")
				return
			}
			ctx.Set(ContextAdminViaKey, "token")
			ctx.Next()
			return
		}

		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortError(ctx, http.StatusUnauthorized, 40101, "admin credential missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.AbortError(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.AbortError(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			return
		}

		claims, err := utils.ParseAdminToken(cfg.JWTSecret, tokenString)
		if err != nil {
			utils.AbortError(ctx, http.StatusUnauthorized, 40105, "invalid token")
			return
		}
		if utils.IsTokenRevoked(claims.ID) {
			utils.AbortError(ctx, http.StatusUnauthorized, 40104, "token revoked")
			return
		}

		ctx.Set(ContextAdminClaimsKey, claims)
		ctx.Set(ContextAdminViaKey, "session")
		ctx.Next()
	}
}

// AdminClaims returns the session claims set by AdminRequired, if any.
func AdminClaims(ctx *gin.Context) (*utils.AdminClaims, bool) {
	v, ok := ctx.Get(ContextAdminClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.AdminClaims)
	return claims, ok
}
