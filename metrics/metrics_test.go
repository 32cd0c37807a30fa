package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegisteredMetricsRecordWhenEnabled(t *testing.T) {
	Enable()
	r := NewRegistry("test")
	m := NewRegisteredMeter("rating/created", r)
	m.Mark(2)
	m.Mark(-1)
	if m.Count() != 2 {
		t.Fatalf("meter count mismatch: have %d want 2", m.Count())
	}
	if again := NewRegisteredMeter("rating/created", r); again != m {
		t.Fatalf("re-registration returned a different meter")
	}
	tm := NewRegisteredTimer("rating/exec", r)
	tm.Update(time.Millisecond)
	tm.UpdateSince(time.Now())
	if tm.Count() != 2 || tm.Total() < time.Millisecond {
		t.Fatalf("timer mismatch: count %d total %v", tm.Count(), tm.Total())
	}
	g := NewRegisteredGauge("rating/slots", r)
	g.Update(7)
	if g.Value() != 7 {
		t.Fatalf("gauge mismatch: %d", g.Value())
	}
	if r.Get("rating/slots") != g || r.Get("missing") != nil {
		t.Fatalf("registry lookup mismatch")
	}
	n := 0
	r.Each(func(string, interface{}) { n++ })
	if n != 3 {
		t.Fatalf("expected 3 metrics, have %d", n)
	}
}

func TestHandlerExportsSeries(t *testing.T) {
	Enable()
	r := NewRegistry("test")
	NewRegisteredMeter("state/update/account", r).Mark(1)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "test_state_update_account_total 1") {
		t.Fatalf("series missing from scrape:\n%s", body)
	}
}

func TestPromName(t *testing.T) {
	if have := promName("chain/ttl-prune/kv"); have != "chain_ttl_prune_kv" {
		t.Fatalf("promName mismatch: %s", have)
	}
}
