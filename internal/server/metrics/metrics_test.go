package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecordLogin_ByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(true)
	c.RecordLogin(false)

	if v := counterValue(t, reg, "passfort_logins_total", map[string]string{"outcome": "success"}); v != 2 {
		t.Errorf("success logins = %v, want 2", v)
	}
	if v := counterValue(t, reg, "passfort_logins_total", map[string]string{"outcome": "failure"}); v != 1 {
		t.Errorf("failure logins = %v, want 1", v)
	}
}

func TestRecordRevocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRevocation()

	if v := counterValue(t, reg, "passfort_revocations_total", nil); v != 1 {
		t.Errorf("revocations = %v, want 1", v)
	}
}
