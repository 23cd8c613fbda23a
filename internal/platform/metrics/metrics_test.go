package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics, update func()) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler(update).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape: expected 200, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestRequestMiddleware(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(RequestMiddleware(m))
	r.Get("/recordings/{recording_id}/curves", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "recording_id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recordings/"+id+"/curves", nil))
	}

	body := scrape(t, m, nil)
	for _, want := range []string{
		`bakecurve_requests_total{method="GET",route="/recordings/{recording_id}/curves"} 3`,
		`bakecurve_errors_total{class="4xx",route="/recordings/{recording_id}/curves"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q\n%s", want, body)
		}
	}
}

func TestMetrics_domainCounters(t *testing.T) {
	m := New()
	m.IncRecordingsAnalyzed()
	m.AddCurvesDetected(3)
	m.AddCandidatesDiscarded(2)
	m.IncDegradedResolutions()

	body := scrape(t, m, func() { m.SetLoadedRecordings(4) })
	for _, want := range []string{
		"bakecurve_recordings_analyzed_total 1",
		"bakecurve_curves_detected_total 3",
		"bakecurve_candidates_discarded_total 2",
		"bakecurve_degraded_resolutions_total 1",
		"bakecurve_loaded_recordings 4",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}
