package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/vhive-serverless/torchscale/pkg/common"

	log "github.com/sirupsen/logrus"
)

const namespace = "torchscale"

// ScaleRegistry exposes a report as Prometheus gauges, for node_exporter's textfile
// collector or any other scraper of the text format.
type ScaleRegistry struct {
	registry *prometheus.Registry

	efficiency *prometheus.GaugeVec
	throughput *prometheus.GaugeVec
	findings   *prometheus.GaugeVec
	severity   *prometheus.GaugeVec
	warnings   *prometheus.GaugeVec
}

func NewScaleRegistry() *ScaleRegistry {
	trialLabels := []string{"experiment", "model", "batch_size", "gpus"}

	r := &ScaleRegistry{
		registry: prometheus.NewRegistry(),
		efficiency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scaling_efficiency",
			Help:      "Measured throughput over the ideal linear throughput of the 1-GPU baseline.",
		}, trialLabels),
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput",
			Help:      "Measured training throughput of a trial.",
		}, trialLabels),
		findings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bottleneck_findings",
			Help:      "Number of bottleneck findings per category.",
		}, []string{"experiment", "category"}),
		severity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bottleneck_max_severity",
			Help:      "Highest severity among the findings of a category.",
		}, []string{"experiment", "category"}),
		warnings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_warnings",
			Help:      "Number of report warnings per kind.",
		}, []string{"experiment", "kind"}),
	}

	r.registry.MustRegister(r.efficiency, r.throughput, r.findings, r.severity, r.warnings)
	return r
}

func (r *ScaleRegistry) Record(report common.ExperimentReport) {
	experiment := report.ExperimentName

	for _, p := range report.ScalingPoints {
		labels := prometheus.Labels{
			"experiment": experiment,
			"model":      p.Model,
			"batch_size": strconv.Itoa(p.BatchSize),
			"gpus":       strconv.Itoa(p.DeviceCount),
		}
		r.efficiency.With(labels).Set(p.Efficiency)
		r.throughput.With(labels).Set(p.MeasuredThroughput)
	}

	for category, findings := range lo.GroupBy(report.Findings, func(f common.BottleneckFinding) string {
		return f.Category.String()
	}) {
		r.findings.WithLabelValues(experiment, category).Set(float64(len(findings)))
		r.severity.WithLabelValues(experiment, category).Set(lo.MaxBy(findings, func(a, b common.BottleneckFinding) bool {
			return a.Severity > b.Severity
		}).Severity)
	}

	for kind, count := range lo.CountValuesBy(report.Warnings, func(w common.Warning) common.WarningKind {
		return w.Kind
	}) {
		r.warnings.WithLabelValues(experiment, string(kind)).Set(float64(count))
	}
}

func (r *ScaleRegistry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile records report and writes every gauge to path in the Prometheus text format.
func (r *ScaleRegistry) WriteTextfile(path string, report common.ExperimentReport) error {
	r.Record(report)
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return err
	}

	log.Debugf("Wrote Prometheus textfile %s", path)
	return nil
}
