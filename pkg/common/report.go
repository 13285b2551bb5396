package common

import (
	"sort"
	"time"
)

// ScalingPoint is one device count on a group's scaling curve.
type ScalingPoint struct {
	Model              string  `json:"model" csv:"model"`
	BatchSize          int     `json:"batch_size" csv:"batch_size"`
	DeviceCount        int     `json:"device_count" csv:"device_count"`
	MeasuredThroughput float64 `json:"measured_throughput" csv:"measured_throughput"`
	IdealThroughput    float64 `json:"ideal_throughput" csv:"ideal_throughput"`
	Efficiency         float64 `json:"efficiency" csv:"efficiency"`
}

func (p ScalingPoint) Key() GroupKey {
	return GroupKey{Model: p.Model, BatchSize: p.BatchSize}
}

// SortScalingPoints orders points by model, batch size and device count.
func SortScalingPoints(points []ScalingPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.Key() != b.Key() {
			return a.Key().Less(b.Key())
		}
		return a.DeviceCount < b.DeviceCount
	})
}

type SummaryStatistics struct {
	RecordCount        int     `json:"record_count"`
	ThroughputMean     float64 `json:"throughput_mean"`
	ThroughputVariance float64 `json:"throughput_variance"`
	LatencyMean        float64 `json:"latency_mean"`
	LatencyVariance    float64 `json:"latency_variance"`
	LatencyMedian      float64 `json:"latency_median"`
	LatencyP95         float64 `json:"latency_p95"`
}

// TableRow is one trial in the per-group result table.
type TableRow struct {
	Model            string   `json:"model" csv:"model"`
	BatchSize        int      `json:"batch_size" csv:"batch_size"`
	DeviceCount      int      `json:"device_count" csv:"device_count"`
	Throughput       float64  `json:"throughput" csv:"throughput"`
	IterationLatency float64  `json:"iteration_latency" csv:"iteration_latency"`
	Efficiency       *float64 `json:"efficiency,omitempty" csv:"efficiency"`
	FindingCount     int      `json:"finding_count" csv:"finding_count"`
}

type Warning struct {
	Kind    WarningKind `json:"kind"`
	Source  string      `json:"source"`
	Message string      `json:"message"`
}

type ExperimentReport struct {
	ID             string              `json:"id"`
	ExperimentName string              `json:"experiment_name"`
	GeneratedAt    time.Time           `json:"generated_at"`
	ScalingPoints  []ScalingPoint      `json:"scaling_points"`
	Findings       []BottleneckFinding `json:"findings"`
	Summary        SummaryStatistics   `json:"summary"`
	Table          []TableRow          `json:"table"`
	Warnings       []Warning           `json:"warnings,omitempty"`
}

// Curves splits the report's scaling points by group, keeping device-count order.
func (r *ExperimentReport) Curves() map[GroupKey][]ScalingPoint {
	curves := make(map[GroupKey][]ScalingPoint)
	for _, p := range r.ScalingPoints {
		curves[p.Key()] = append(curves[p.Key()], p)
	}
	return curves
}
