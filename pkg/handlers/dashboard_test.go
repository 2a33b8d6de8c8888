package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/dashboard"
)

func TestDashboardData(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{summary: dashboard.MockSummary()}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.DashboardData(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard-data", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "$48,215.37", body["totalRevenue"])
	assert.Len(t, body["recentSales"], 5)
}

func TestAnalyticsData(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{analytics: dashboard.MockAnalytics()}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.AnalyticsData(rec, httptest.NewRequest(http.MethodGet, "/api/analytics-data", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	for _, key := range []string{"salesTrend", "topProducts", "storePerformance", "spoilageData", "categoryComparison", "promotionEffectiveness"} {
		assert.Contains(t, body, key)
	}
}

func TestDashboard_Errors(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{err: errors.New("warehouse down: password=hunter2")}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.DashboardData(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard-data", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch dashboard data.", decodeBody(t, rec)["message"])

	rec = httptest.NewRecorder()
	h.AnalyticsData(rec, httptest.NewRequest(http.MethodGet, "/api/analytics-data", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}
