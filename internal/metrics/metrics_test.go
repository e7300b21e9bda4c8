package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	before := testutil.ToFloat64(StatusChanges.WithLabelValues("ready"))
	StatusChanges.WithLabelValues("ready").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(StatusChanges.WithLabelValues("ready")))

	skipped := testutil.ToFloat64(RefreshSkipped)
	RefreshSkipped.Inc()
	assert.Equal(t, skipped+1, testutil.ToFloat64(RefreshSkipped))

	RefreshDuration.Observe(0.01)
	assert.Equal(t, 1, testutil.CollectAndCount(RefreshDuration))
}

func TestGaugeFunc(t *testing.T) {
	require.NoError(t, GaugeFunc("test_gauge", "test", func() float64 { return 3 }))
	require.NoError(t, GaugeFunc("test_gauge", "test", func() float64 { return 3 }))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "foodzz_test_gauge 3")
	assert.Contains(t, string(body), "go_goroutines")
}
