package metrics

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
)

// ExportConfig configures the export of metrics after a run completes.
type ExportConfig struct {
	Textfile    string `long:"textfile" env:"TEXTFILE" description:"Write metrics in Prometheus text format to this path (eg, for the node_exporter textfile collector)"`
	Pushgateway string `long:"pushgateway" env:"PUSHGATEWAY" description:"Push metrics to the Prometheus Pushgateway at this URL"`
	Job         string `long:"job" env:"JOB" default:"fsbench" description:"Job name under which metrics are pushed"`
}

// Export metrics of the Gatherer to each configured destination.
func Export(cfg ExportConfig, g prometheus.Gatherer, grouping map[string]string) error {
	if cfg.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Textfile, g); err != nil {
			return errors.WithMessagef(err, "writing textfile %s", cfg.Textfile)
		}
	}
	if cfg.Pushgateway != "" {
		var p = push.New(cfg.Pushgateway, cfg.Job).Gatherer(g)
		for k, v := range grouping {
			p = p.Grouping(k, v)
		}
		if err := p.Push(); err != nil {
			return errors.WithMessagef(err, "pushing to %s", cfg.Pushgateway)
		}
	}
	return nil
}

// Sample is a single gathered counter or gauge value.
type Sample struct {
	Name   string
	Labels string // Rendered as "k=v,k=v", ordered by label name.
	Value  float64
}

// Snapshot gathers counters and gauges of families having |prefix| as a
// name prefix. Histograms and summaries are skipped.
func Snapshot(g prometheus.Gatherer, prefix string) ([]Sample, error) {
	var families, err = g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			var value float64

			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, Sample{
				Name:   mf.GetName(),
				Labels: renderLabels(m.GetLabel()),
				Value:  value,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func renderLabels(pairs []*dto.LabelPair) string {
	var parts = make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
