package middleware

import (
	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

// CheckRole will protect endpoint from user that is not a specific roles.
// It must run after RequireAuth.
func CheckRole(roles ...model.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := utilities.ExtractUser(ctx)
		if err != nil {
			utilities.Fail(ctx, utilities.NewUnauthorized(err.Error()))
			return
		}

		if !model.RoleAllowed(user.Role, roles...) {
			utilities.Fail(ctx, utilities.NewForbidden("not authorized"))
			return
		}
		ctx.Next()
	}
}
