package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/utilities"
)

// ErrorHandler is the single place errors become responses. Handlers record
// errors with utilities.Fail; the last one recorded is written as
// {msg, error?} unless a response was already written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		ae := utilities.AsAppError(last.Err)
		if ae.Status >= http.StatusInternalServerError {
			slog.ErrorContext(c.Request.Context(), "request failed",
				"method", c.Request.Method, "path", c.Request.URL.Path, "error", last.Err)
		}
		c.JSON(ae.Status, utilities.ErrorResponse{Msg: ae.Message, Error: ae.Details})
	}
}

// Recovery answers panics with a generic 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method, "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{Msg: "Internal server error"})
	})
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	utilities.Fail(c, utilities.NewNotFound(fmt.Sprintf("Invalid URL %s", c.Request.URL.Path)))
}
