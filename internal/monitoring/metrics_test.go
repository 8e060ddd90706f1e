package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRouterServesMetrics(t *testing.T) {
	mm := NewMetricsManager(MetricsConfig{})
	mm.RecordPage(PageExtracted, 2*time.Second)
	mm.RecordPage(PageNoData, time.Second)
	mm.RecordVariants(3, 1, 2)
	mm.SetRecordSet(2, 1)
	mm.RecordUpsert("unique", true)

	srv := httptest.NewServer(NewRouter(mm, NewRunState()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`productscrapexter_pipeline_pages_total{status="extracted"} 1`,
		`productscrapexter_pipeline_variants_total 3`,
		`productscrapexter_pipeline_offers_rejected_total{reason="below_threshold"} 2`,
		`productscrapexter_pipeline_duplicate_records 1`,
		`productscrapexter_pipeline_upserts_total{collection="unique",result="inserted"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHealthzReportsPhase(t *testing.T) {
	state := NewRunState()
	state.SetPhase(PhaseExtracting)

	rec := httptest.NewRecorder()
	NewRouter(nil, state).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if status.Phase != PhaseExtracting || status.Status != "ok" {
		t.Errorf("unexpected health: %+v", status)
	}
}

func TestNilManagerIsNoop(t *testing.T) {
	var mm *MetricsManager
	mm.RecordPage(PageExtracted, time.Second)
	mm.RecordVariants(1, 0, 0)
	mm.RecordUpsert("all", false)
	mm.SetRecordSet(1, 0)
	mm.RecordOutputError("csv")
	if mm.Registry() == nil {
		t.Error("expected empty registry from nil manager")
	}
}
