package metrics_test

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Paintersrp/warden/internal/metrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	metrics.EmitBuildInfo()
	metrics.RecordFork("supervised")
	metrics.RecordFork("detached")
	metrics.RecordReap("signaled")
	metrics.RecordRelease()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()
	for _, line := range []string{
		fmt.Sprintf("warden_forks_total{mode=%q} 1", "supervised"),
		fmt.Sprintf("warden_forks_total{mode=%q} 1", "detached"),
		fmt.Sprintf("warden_reaps_total{outcome=%q} 1", "signaled"),
		"warden_releases_total 1",
		"warden_active_children 0",
		"warden_build_info",
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("expected metric line %q in body:\n%s", line, body)
		}
	}
}
