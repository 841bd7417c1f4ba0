// Package middleware contain utilities middleware code
package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

// Context keys set by RequireAuth
const (
	UserKey   = "user"
	ClaimsKey = "claims"
)

// RequireAuth resolves the marked token header to a live user record.
// Each rejection reason is distinct: missing, malformed (no marker), empty,
// invalid (signature, expiry, issuer, subject or password changed since
// issue), then user not found.
func RequireAuth(db *database.DBinstanceStruct, tokens *auth.TokenCodec) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractMarkedToken(ctx, tokens.Header, tokens.Marker)
		if err != nil {
			utilities.Fail(ctx, utilities.NewUnauthorized(err.Error()))
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			utilities.Fail(ctx, utilities.NewUnauthorized(auth.ErrInvalidToken.Error()))
			return
		}

		var foundUser model.User
		if err := db.WithContext(ctx.Request.Context()).Where("id = ?", claims.Subject).First(&foundUser).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utilities.Fail(ctx, utilities.NewBadRequest("user not found"))
				return
			}
			utilities.Fail(ctx, utilities.NewInternal(err))
			return
		}

		if foundUser.PasswordChangedAt != nil && claims.IssuedBefore(*foundUser.PasswordChangedAt) {
			utilities.Fail(ctx, utilities.NewUnauthorized(auth.ErrInvalidToken.Error()))
			return
		}

		ctx.Set(ClaimsKey, claims)
		ctx.Set(UserKey, foundUser)
		ctx.Next()
	}
}
