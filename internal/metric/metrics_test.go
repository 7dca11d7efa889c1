package metric

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexreview/internal/lexicon"
	"github.com/heartmarshall/lexreview/internal/stream"
)

// value reads the current value of a single counter or gauge.
func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric %v", m.Desc())
	return 0
}

func TestNew_RegistersCollectors(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveAnalyzer("primary", 3*time.Millisecond, nil)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["lexreview_analyzer_roundtrip_seconds"])
	assert.True(t, names["go_goroutines"], "Go runtime collector should be registered")
}

func TestObserveAnalyzer_CountsFailures(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveAnalyzer("guesser", time.Millisecond, nil)
	m.ObserveAnalyzer("guesser", time.Millisecond, errors.New("broken"))
	m.ObserveAnalyzer("primary", time.Millisecond, errors.New("broken"))

	assert.Equal(t, 1.0, value(t, m.AnalyzerFailures.WithLabelValues("guesser")))
	assert.Equal(t, 1.0, value(t, m.AnalyzerFailures.WithLabelValues("primary")))
}

func TestObserveTokens(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveTokens("primary", stream.Stats{Units: 5, EmptySurfaces: 1, RejectedReadings: 3, DroppedSurfaces: 2})
	m.ObserveTokens("primary", stream.Stats{Units: 2})

	assert.Equal(t, 7.0, value(t, m.StreamUnits.WithLabelValues("primary")))
	assert.Equal(t, 3.0, value(t, m.StreamSkipped.WithLabelValues("primary", "rejected_reading")))
	assert.Equal(t, 2.0, value(t, m.StreamSkipped.WithLabelValues("primary", "dropped_surface")))
}

func TestObserveRegistry(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRegistry(lexicon.Stats{Surfaces: 10, Lemmas: 7, Sightings: 31})

	assert.Equal(t, 10.0, value(t, m.RegistrySurfaces))
	assert.Equal(t, 7.0, value(t, m.RegistryLemmas))
	assert.Equal(t, 31.0, value(t, m.RegistrySightings))
}

func TestRestartAndCallbackCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.IncRestart("primary")
	m.IncRestart("primary")
	m.RecordCallback("list", http.StatusOK)
	m.RecordCallback("process", http.StatusServiceUnavailable)

	assert.Equal(t, 2.0, value(t, m.AnalyzerRestarts.WithLabelValues("primary")))
	assert.Equal(t, 1.0, value(t, m.CallbackRequests.WithLabelValues("process", "503")))
}

func TestHandler_Exposition(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordCallback("list", http.StatusOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `lexreview_callback_requests_total{action="list",status="200"} 1`), body)
}
