package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
	})

	c, w := newTestContext(t, http.MethodGet, "/ready", "")
	handler.Ready(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
}

func TestMetricsHandlerReadyDegraded(t *testing.T) {
	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	c, w := newTestContext(t, http.MethodGet, "/ready", "")
	handler.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheusAndSummary(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordScheduleOperation("add", "applied")
	handler := NewMetricsHandler(metrics, nil)

	c, w := newTestContext(t, http.MethodGet, "/metrics", "")
	handler.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `course_planner_schedule_operations_total{operation="add",outcome="applied"} 1`))

	c, w = newTestContext(t, http.MethodGet, "/metrics/summary", "")
	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot models.SystemMetrics
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &snapshot))
	assert.EqualValues(t, 1, snapshot.ScheduleOperations)
}

func TestMetricsHandlerPrometheusDisabled(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)

	c, _ := newTestContext(t, http.MethodGet, "/metrics", "")
	handler.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())
}
