package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"cinemind/internal/metrics"
)

func TestRecordRecommendation(t *testing.T) {
	counter := metrics.RecommendationsTotal.WithLabelValues("hybrid", metrics.OutcomeOK)
	before := testutil.ToFloat64(counter)
	metrics.RecordRecommendation("hybrid", metrics.OutcomeOK, 2*time.Millisecond)
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("recommendations counter = %v, want %v", got, before+1)
	}
}

func TestRecordMetadataCounters(t *testing.T) {
	lookups := metrics.MetadataLookupsTotal.WithLabelValues(metrics.SourceMemory)
	fallbacks := metrics.MetadataFallbacksTotal.WithLabelValues("timeout")
	beforeLookups := testutil.ToFloat64(lookups)
	beforeFallbacks := testutil.ToFloat64(fallbacks)

	metrics.RecordMetadataLookup(metrics.SourceMemory)
	metrics.RecordMetadataFallback("timeout")
	metrics.RecordMetadataFallback("timeout")

	if got := testutil.ToFloat64(lookups); got != beforeLookups+1 {
		t.Fatalf("lookups = %v, want %v", got, beforeLookups+1)
	}
	if got := testutil.ToFloat64(fallbacks); got != beforeFallbacks+2 {
		t.Fatalf("fallbacks = %v, want %v", got, beforeFallbacks+2)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET /api/moods", "200")
	before := testutil.ToFloat64(counter)
	metrics.RecordHTTPRequest("GET /api/moods", 200)
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("http counter = %v, want %v", got, before+1)
	}
}
