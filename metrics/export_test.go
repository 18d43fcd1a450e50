package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFiltersAndOrders(t *testing.T) {
	var reg = prometheus.NewRegistry()
	var ops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_ops_total",
		Help: "ops",
	}, []string{"status", "op"})
	var gauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "gauge"})
	var hist = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_hist", Help: "hist"})
	var other = prometheus.NewCounter(prometheus.CounterOpts{Name: "other_total", Help: "other"})
	reg.MustRegister(ops, gauge, hist, other)

	ops.WithLabelValues(Ok, "write").Add(3)
	ops.WithLabelValues(Fail, "rename").Inc()
	gauge.Set(1.5)
	hist.Observe(1)
	other.Inc()

	var samples, err = Snapshot(reg, "test_")
	require.NoError(t, err)
	require.Equal(t, []Sample{
		{Name: "test_gauge", Labels: "", Value: 1.5},
		{Name: "test_ops_total", Labels: "op=rename,status=fail", Value: 1},
		{Name: "test_ops_total", Labels: "op=write,status=ok", Value: 3},
	}, samples)
}

func TestExportToTextfile(t *testing.T) {
	var reg = prometheus.NewRegistry()
	reg.MustRegister(FsBenchCollectors()...)
	RunsTotal.WithLabelValues(Ok).Inc()

	var path = filepath.Join(t.TempDir(), "fsbench.prom")
	require.NoError(t, Export(ExportConfig{Textfile: path}, reg, nil))

	var b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), `fsbench_runs_total{status="ok"}`))

	// No destinations is a no-op.
	require.NoError(t, Export(ExportConfig{}, reg, nil))
}
