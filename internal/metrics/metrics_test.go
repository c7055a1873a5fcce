package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{userId}/expenses", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := InstrumentHandler(mux)

	counter := httpRequests.WithLabelValues("GET", "GET /api/users/{userId}/expenses", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"65a1f0c2b3d4e5f601234567", "65a1f0c2b3d4e5f601234568"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/"+id+"/expenses", http.NoBody)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestInstrumentHandlerUnmatched(t *testing.T) {
	h := InstrumentHandler(http.NewServeMux())
	counter := httpRequests.WithLabelValues("GET", "unmatched", "404")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordWorkflow(t *testing.T) {
	counter := workflowRuns.WithLabelValues("create_user", OutcomeClientError)
	before := testutil.ToFloat64(counter)

	RecordWorkflow("create_user", OutcomeClientError)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordWorkflow("history", OutcomeSuccess)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "expense_tracker_workflow_runs_total"), "workflow counter missing")
	assert.Contains(t, body, "go_goroutines")
}
