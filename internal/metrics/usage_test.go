package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

func TestObserveSnapshot(t *testing.T) {
	snap := &model.UsageSnapshot{
		TokensUsed:      9000,
		TokenLimit:      10000,
		TokensRemaining: 1000,
		PercentageUsed:  90,
		BurnRate:        1200,
		ResetInfo:       &model.ResetInfo{TimeUntilReset: model.Millis(90_000)},
	}
	ObserveSnapshot(snap, model.StatusCritical)

	if got := testutil.ToFloat64(PercentageUsed); got != 90 {
		t.Fatalf("usage_percentage = %v, want 90", got)
	}
	if got := testutil.ToFloat64(Tokens.WithLabelValues("remaining")); got != 1000 {
		t.Fatalf("tokens{remaining} = %v, want 1000", got)
	}
	if got := testutil.ToFloat64(ResetSeconds); got != 90 {
		t.Fatalf("time_until_reset_seconds = %v, want 90", got)
	}
	if got := testutil.ToFloat64(StatusLevel.WithLabelValues("critical")); got != 1 {
		t.Fatalf("status{critical} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(StatusLevel.WithLabelValues("safe")); got != 0 {
		t.Fatalf("status{safe} = %v, want 0", got)
	}

	snap.ResetInfo = nil
	ObserveSnapshot(snap, model.StatusCritical)
	if got := testutil.ToFloat64(ResetSeconds); got != -1 {
		t.Fatalf("time_until_reset_seconds without countdown = %v, want -1", got)
	}
}

func TestRecordRefresh(t *testing.T) {
	before := testutil.ToFloat64(RefreshesTotal.WithLabelValues("error"))
	RecordRefresh(errors.New("boom"))
	if got := testutil.ToFloat64(RefreshesTotal.WithLabelValues("error")); got != before+1 {
		t.Fatalf("refreshes_total{error} = %v, want %v", got, before+1)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/items/{id}", "418"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/items/7", nil))
	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/items/{id}", "418"))
	if got != before+1 {
		t.Fatalf("http_requests_total = %v, want %v", got, before+1)
	}
}
