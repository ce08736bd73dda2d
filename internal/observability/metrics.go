package observability

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	registerOnce sync.Once

	parseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlvf",
			Subsystem: "codec",
			Name:      "parse_total",
			Help:      "Records overlaid onto existing buffers.",
		},
		[]string{"layout", "result"},
	)
	finalizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlvf",
			Subsystem: "codec",
			Name:      "finalize_total",
			Help:      "Finalize passes over built records.",
		},
		[]string{"layout", "result"},
	)
	recordBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tlvf",
			Subsystem: "codec",
			Name:      "record_bytes",
			Help:      "Size of top-level records parsed or finalized.",
			Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
		},
		[]string{"layout"},
	)
	arenaGrowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tlvf",
			Subsystem: "arena",
			Name:      "grow_total",
			Help:      "Arena reallocations while building records.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(parseTotal, finalizeTotal, recordBytes, arenaGrowTotal)
	})
}

func RecordParse(layout, result string) {
	RegisterMetrics()
	parseTotal.WithLabelValues(layout, result).Inc()
}

func RecordFinalize(layout, result string) {
	RegisterMetrics()
	finalizeTotal.WithLabelValues(layout, result).Inc()
}

func ObserveRecordBytes(layout string, n int) {
	RegisterMetrics()
	recordBytes.WithLabelValues(layout).Observe(float64(n))
}

func RecordArenaGrow() {
	RegisterMetrics()
	arenaGrowTotal.Inc()
}

// Sample is one counter series read back from the default registry.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers the tlvf counters, sorted by name and labels.
func Snapshot() ([]Sample, error) {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}
	out := make([]Sample, 0)
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "tlvf_") || mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, Sample{Name: mf.GetName(), Labels: labels, Value: m.GetCounter().GetValue()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return labelKey(out[i].Labels) < labelKey(out[j].Labels)
	})
	return out, nil
}

func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}
