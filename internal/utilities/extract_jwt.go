package utilities

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// Token extraction failures, each a distinct rejection reason.
var (
	ErrMissingToken   = errors.New("missing token")
	ErrMalformedToken = errors.New("malformed token")
	ErrEmptyToken     = errors.New("empty token")
)

// ExtractMarkedToken reads the bearer credential from header and strips the
// literal marker prefix.
func ExtractMarkedToken(c *gin.Context, header, marker string) (string, error) {
	raw := c.GetHeader(header)
	if raw == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(raw, marker) {
		return "", ErrMalformedToken
	}
	token := strings.TrimSpace(raw[len(marker):])
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}
