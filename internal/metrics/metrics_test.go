package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObserversAreSafeBeforeInit(t *testing.T) {
	// Must not panic when Init has not run (e.g. library use in tests).
	ObserveRun(true)
	ObserveExtraction("readability", true)
	ObserveSummarization("gemini", false)
	ObserveNotification(false)
	ObservePass(time.Second, 3)
}

func TestInitAndHandler(t *testing.T) {
	Init()
	Init() // idempotent

	ObserveRun(true)
	ObserveRun(false)
	ObserveExtraction("", false)
	ObserveSummarization("local-fallback", true)
	ObserveNotification(true)
	ObservePass(2*time.Second, 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	require.Contains(t, body, "aera_workflow_runs_total")
	require.Contains(t, body, `aera_extractions_total{method="none",outcome="failure"}`)
	require.Contains(t, body, "aera_pass_duration_seconds")
}
