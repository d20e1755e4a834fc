package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDelivery(t *testing.T) {
	m := New()

	m.ObserveDelivery("email", OutcomeDelivered)
	m.ObserveDelivery("email", OutcomeDelivered)
	m.ObserveDelivery("sms", OutcomeFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.deliveries.WithLabelValues("email", OutcomeDelivered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("sms", OutcomeFailed)))
}

func TestObserveFanout(t *testing.T) {
	m := New()

	m.ObserveFanout("completed", 300*time.Millisecond)
	m.ObserveFanout("skipped", 0)
	m.ObserveRecipients("push", 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fanoutRuns.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fanoutRuns.WithLabelValues("skipped")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.recipients.WithLabelValues("push")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fanoutDuration))
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `livestock_alerts_http_requests_total{method="GET",route="unmatched",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
