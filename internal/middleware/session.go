package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

// ContextSessionKey is the gin context key storing session claims.
const ContextSessionKey = "plannerSession"

// SessionTokenHeader is the alternative header carrying a session token.
const SessionTokenHeader = "X-Session-Token"

type sessionValidator interface {
	Validate(token string) (*models.SessionClaims, error)
}

// Session requires a valid planner session token, either as a bearer token or
// in the X-Session-Token header.
func Session(sessions sessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := sessionToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := sessions.Validate(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, claims)
		c.Next()
	}
}

func sessionToken(c *gin.Context) (string, error) {
	if token := strings.TrimSpace(c.GetHeader(SessionTokenHeader)); token != "" {
		return token, nil
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "session token required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// SessionID returns the session id stored by Session.
func SessionID(c *gin.Context) string {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return ""
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return ""
	}
	return claims.SessionID
}
