package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLookup(t *testing.T) {
	hits := testutil.ToFloat64(SettingsLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(SettingsLookupsTotal.WithLabelValues("miss"))

	ObserveLookup(true)
	ObserveLookup(false)
	ObserveLookup(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(SettingsLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(SettingsLookupsTotal.WithLabelValues("miss")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/health", "200"))

	ObserveRequest(http.MethodGet, "/api/health", http.StatusOK, 5*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/health", "200"))
	assert.Equal(t, before+1, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveLookup(true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appsettings_settings_lookups_total")
}
