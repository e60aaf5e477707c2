package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounters(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.FileSummarized(summary.ModeProcess, 10)
	m.FileSummarized(summary.ModeProcess, 3)
	m.FileSummarized(summary.ModeSkip, 1)
	m.FileFailed("x.txt", io.EOF)
	m.IntervalParsed("label", 2*time.Second)
	m.SpeciesMatched("Noctule", 1500*time.Millisecond)
	m.SpeciesMatched("Noctule", 500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.filesTotal.WithLabelValues("process")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesTotal.WithLabelValues("skip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fileErrorsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.intervalsTotal.WithLabelValues("label")))
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.speciesSeconds.WithLabelValues("Noctule")), 1e-9)
}

func TestDuplicateRegistration(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	_, err = New(m.Registry())
	assert.Error(t, err)
}

func TestInstrumentAndHandler(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	h := m.Instrument("/api/x", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/x", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `batlog_http_requests_total{route="/api/x",status="418"} 1`), body)
}
