package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
)

type sessionIssuerStub struct {
	token *models.SessionToken
	err   error
}

func (s sessionIssuerStub) Issue() (*models.SessionToken, error) {
	return s.token, s.err
}

func TestSessionHandlerCreate(t *testing.T) {
	expires := time.Date(2025, time.September, 24, 0, 0, 0, 0, time.UTC)
	handler := NewSessionHandler(sessionIssuerStub{token: &models.SessionToken{Token: "signed", SessionID: testSessionID, ExpiresAt: expires}})

	c, w := newTestContext(t, http.MethodPost, "/sessions", "")
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var token models.SessionToken
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &token))
	assert.Equal(t, "signed", token.Token)
	assert.Equal(t, testSessionID, token.SessionID)
	assert.True(t, token.ExpiresAt.Equal(expires))
}

func TestSessionHandlerCreateFailure(t *testing.T) {
	handler := NewSessionHandler(sessionIssuerStub{err: errors.New("entropy exhausted")})

	c, w := newTestContext(t, http.MethodPost, "/sessions", "")
	handler.Create(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
