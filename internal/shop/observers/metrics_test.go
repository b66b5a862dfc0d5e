package observers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveFetch(true, 12, 30*time.Millisecond)
	r.ObserveFetch(false, 0, time.Second)
	r.IncStaleFetch()
	r.ObserveMutation("restock", true)
	r.ObserveMutation("restock", false)
	r.ObservePersist(true)
	r.SetCartQuantity(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.catalogSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.staleFetchTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.mutationsTotal.WithLabelValues("restock", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.persistTotal.WithLabelValues("success")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.cartQuantity))
	assert.Equal(t, 1, testutil.CollectAndCount(r.fetchDuration))
}

func TestRecordersAreIndependentPerRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusRecorder(prometheus.NewRegistry())
		NewPrometheusRecorder(prometheus.NewRegistry())
	})
}
