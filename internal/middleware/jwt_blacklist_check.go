package middleware

import (
	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/utilities"
)

// JwtBlacklistCheck rejects tokens revoked by sign-out. It must run after
// RequireAuth, which stores the verified claims.
func JwtBlacklistCheck(bl auth.JwtBlacklistStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := auth.ClaimsFrom(ctx)
		if err != nil {
			utilities.Fail(ctx, utilities.NewUnauthorized(auth.ErrInvalidToken.Error()))
			return
		}

		isBlacklisted, err := bl.IsBlacklisted(ctx.Request.Context(), claims.ID)
		if err != nil {
			utilities.Fail(ctx, utilities.NewInternal(err))
			return
		}

		if isBlacklisted {
			utilities.Fail(ctx, utilities.NewUnauthorized(auth.ErrInvalidToken.Error()))
			return
		}
		ctx.Next()
	}
}
