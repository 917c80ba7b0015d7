package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sagarc03/quire"
	quirehttp "github.com/sagarc03/quire/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	metrics := quirehttp.NewMetrics("quire")
	h, service := newTestHandler(t, quirehttp.HandlerConfig{Metrics: metrics})

	service.On("Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(quire.ErrNotFound)

	do(h, http.MethodDelete, "/workspace/"+testWS+"/files/"+testID, "")
	do(h, http.MethodDelete, "/workspace/"+testWS+"/files/"+testID, "")

	n, err := testutil.GatherAndCount(metrics.Registry(), "quire_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "ids must not become label values")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/workspace/{ws}/files/{id}"`)
	assert.Contains(t, rec.Body.String(), `status="404"`)
}

func TestMetrics_CustomPath(t *testing.T) {
	h, _ := newTestHandler(t, quirehttp.HandlerConfig{Metrics: quirehttp.NewMetrics("quire"), MetricsPath: "/internal/metrics"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
