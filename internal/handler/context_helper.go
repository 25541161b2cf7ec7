package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/middleware"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

// sessionFromContext returns the session id set by the session middleware and
// writes a 401 when it is missing.
func sessionFromContext(c *gin.Context) (string, bool) {
	id := middleware.SessionID(c)
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session required"))
		return "", false
	}
	return id, true
}
