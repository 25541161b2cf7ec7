package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type sessionIssuer interface {
	Issue() (*models.SessionToken, error)
}

// SessionHandler issues anonymous planner sessions.
type SessionHandler struct {
	sessions sessionIssuer
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(sessions sessionIssuer) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create godoc
// @Summary Start a planner session
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	token, err := h.sessions.Issue()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, token)
}
