package prometrics

import (
	"testing"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounterAddsWithLabels(t *testing.T) {
	reg := NewWith("shop", "", prometheus.NewRegistry())

	c := reg.Counter("orders_total", "Orders placed.", "method")
	c.Add(1, observability.L("method", "COD"))
	c.Add(2, observability.L("method", "COD"))
	c.Add(5, observability.L("method", "BKASH"))

	vec := reg.(*registry)
	raw, _ := vec.counters.Load("orders_total")
	cv := raw.(*prometheus.CounterVec)
	assert.Equal(t, 3.0, testutil.ToFloat64(cv.WithLabelValues("COD")))
	assert.Equal(t, 5.0, testutil.ToFloat64(cv.WithLabelValues("BKASH")))
}

func TestInstrumentsRegisterOnce(t *testing.T) {
	// A second Counter call with the same name must return the existing
	// instrument instead of panicking on duplicate registration.
	reg := NewWith("shop", "", prometheus.NewRegistry())

	a := reg.Counter("hits_total", "Hits.")
	b := reg.Counter("hits_total", "Hits.")
	a.Add(1)
	b.Add(1)

	raw, _ := reg.(*registry).counters.Load("hits_total")
	cv := raw.(*prometheus.CounterVec)
	assert.Equal(t, 2.0, testutil.ToFloat64(cv.WithLabelValues()))
}

func TestHistogramObserves(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewWith("shop", "", promReg)

	h := reg.Histogram("latency_seconds", "Latency.", prometheus.DefBuckets, "route")
	h.Observe(0.05, observability.L("route", "/api/orders"))
	h.Observe(0.2, observability.L("route", "/api/orders"))

	families, err := promReg.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 1)
	assert.Equal(t, "shop_latency_seconds", families[0].GetName())
	assert.Equal(t, uint64(2), families[0].GetMetric()[0].GetHistogram().GetSampleCount())
}
