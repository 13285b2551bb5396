package bottleneck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhive-serverless/torchscale/pkg/common"
	"github.com/vhive-serverless/torchscale/pkg/config"
)

func trial(t *testing.T, timings []float64, fraction *float64) common.RunRecord {
	r, err := common.NewRunRecord(common.RunRecord{
		Model:            "bert-large",
		BatchSize:        32,
		DeviceCount:      len(timings),
		Throughput:       1000,
		IterationLatency: 120,
		PerDeviceTimings: timings,
		SyncWaitFraction: fraction,
	})
	require.NoError(t, err)
	return r
}

func fractionOf(f float64) *float64 {
	return &f
}

func TestDeviceLagScenario(t *testing.T) {
	analyzer := NewDefaultAnalyzer(config.DefaultThresholds())
	findings := analyzer.Analyze(trial(t, []float64{100, 102, 98, 140}, nil))

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, common.DeviceLag, f.Category)
	assert.Equal(t, "device_lag", f.Detector)
	require.NotNil(t, f.Evidence.DeviceIndex)
	assert.Equal(t, 3, *f.Evidence.DeviceIndex)
	assert.Equal(t, 2, *f.Evidence.FastestDeviceIndex)
	assert.Equal(t, 110.0, f.Evidence.MeanTiming)
	assert.InDelta(t, 1.7263, f.Severity, 1e-4)
	assert.Equal(t, "GPU-3 finishing backward pass slower than GPU-2 (140.0ms vs 98.0ms, z=1.73)", f.Description)
	assert.Equal(t, "Check for system noise or thermal throttling on GPU-3", f.Suggestion)

	assert.Equal(t, "bert-large", f.Model)
	assert.Equal(t, 32, f.BatchSize)
	assert.Equal(t, 4, f.DeviceCount)
}

func TestDeviceLagUniformTimings(t *testing.T) {
	analyzer := NewDefaultAnalyzer(config.DefaultThresholds())
	assert.Empty(t, analyzer.Analyze(trial(t, []float64{50, 50, 50, 50}, nil)))
	assert.Empty(t, analyzer.Analyze(trial(t, []float64{50}, nil)))
}

func TestDeviceLagRelabeling(t *testing.T) {
	analyzer := NewDefaultAnalyzer(config.DefaultThresholds())
	reference := analyzer.Analyze(trial(t, []float64{100, 102, 98, 140}, nil))
	require.Len(t, reference, 1)

	permuted := analyzer.Analyze(trial(t, []float64{140, 98, 100, 102}, nil))
	require.Len(t, permuted, 1)

	assert.Equal(t, 0, *permuted[0].Evidence.DeviceIndex)
	assert.Equal(t, 1, *permuted[0].Evidence.FastestDeviceIndex)
	assert.InDelta(t, reference[0].Severity, permuted[0].Severity, 1e-12)
}

func TestDeviceLagThreshold(t *testing.T) {
	strict := NewAnalyzer(&DeviceLagDetector{K: 2.0})
	assert.Empty(t, strict.Analyze(trial(t, []float64{100, 102, 98, 140}, nil)))

	loose := NewAnalyzer(&DeviceLagDetector{K: 0.5})
	findings := loose.Analyze(trial(t, []float64{100, 102, 98, 140}, nil))
	require.Len(t, findings, 1)
	assert.Equal(t, 3, *findings[0].Evidence.DeviceIndex)
}

func TestSyncVariance(t *testing.T) {
	analyzer := NewAnalyzer(&SyncVarianceDetector{Threshold: 0.10})

	findings := analyzer.Analyze(trial(t, []float64{100, 100}, fractionOf(0.15)))
	require.Len(t, findings, 1)
	assert.Equal(t, common.SyncVariance, findings[0].Category)
	assert.InDelta(t, 0.5, findings[0].Severity, 1e-9)
	assert.Equal(t, 0.15, findings[0].Evidence.SyncWaitFraction)
	assert.Equal(t, "Enable gradient bucketing or use ZeRO optimizer", findings[0].Suggestion)

	assert.Empty(t, analyzer.Analyze(trial(t, []float64{100, 100}, fractionOf(0.10))))
	assert.Empty(t, analyzer.Analyze(trial(t, []float64{100, 100}, nil)))
}

func TestAnalyzeWithoutDeviceTimings(t *testing.T) {
	r, err := common.NewRunRecord(common.RunRecord{
		Model:            "resnet50",
		BatchSize:        64,
		DeviceCount:      4,
		Throughput:       1450,
		IterationLatency: 176,
		SyncWaitFraction: fractionOf(0.5),
	})
	require.NoError(t, err)

	findings := NewDefaultAnalyzer(config.DefaultThresholds()).Analyze(r)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestLatencyJitter(t *testing.T) {
	r := trial(t, []float64{100, 100}, nil)
	r.IterationLatency = 100
	r.LatencySamples = []float64{100, 130, 70, 100}

	findings := NewAnalyzer(&LatencyJitterDetector{Threshold: 0.15}).Analyze(r)
	require.Len(t, findings, 1)
	assert.Equal(t, common.Other, findings[0].Category)
	assert.InDelta(t, 0.2449, findings[0].Evidence.CoefficientOfVariation, 1e-4)

	r.LatencySamples = []float64{99, 100, 101}
	assert.Empty(t, NewAnalyzer(&LatencyJitterDetector{Threshold: 0.15}).Analyze(r))
}

func TestFindingsRanking(t *testing.T) {
	analyzer := NewDefaultAnalyzer(config.DefaultThresholds())
	findings := analyzer.Analyze(trial(t, []float64{100, 102, 98, 140}, fractionOf(0.15)))

	require.Len(t, findings, 2)
	assert.Equal(t, common.DeviceLag, findings[0].Category)
	assert.Equal(t, common.SyncVariance, findings[1].Category)
	assert.GreaterOrEqual(t, findings[0].Severity, findings[1].Severity)
}

type fixedDetector struct {
	findings []common.BottleneckFinding
}

func (d *fixedDetector) Name() string {
	return "fixed"
}

func (d *fixedDetector) Detect(common.RunRecord) []common.BottleneckFinding {
	return append([]common.BottleneckFinding(nil), d.findings...)
}

func TestRegisteredDetectorAndTieBreak(t *testing.T) {
	analyzer := NewAnalyzer()
	analyzer.Register(&fixedDetector{findings: []common.BottleneckFinding{
		{Category: common.Other, Severity: 1, Description: "other"},
		{Category: common.SyncVariance, Severity: 1, Description: "sync"},
		{Category: common.DeviceLag, Severity: 1, Description: "lag"},
		{Category: common.Other, Severity: 2, Description: "worst"},
	}})
	require.Len(t, analyzer.Detectors(), 1)

	findings := analyzer.Analyze(trial(t, []float64{10, 10}, nil))
	require.Len(t, findings, 4)

	var descriptions []string
	for _, f := range findings {
		descriptions = append(descriptions, f.Description)
		assert.Equal(t, "fixed", f.Detector)
	}
	assert.Equal(t, []string{"worst", "lag", "sync", "other"}, descriptions)
}

func TestAnalyzeDeviceIndependent(t *testing.T) {
	r, err := common.NewRunRecord(common.RunRecord{
		Model:            "resnet50",
		BatchSize:        64,
		DeviceCount:      4,
		Throughput:       1450,
		IterationLatency: 100,
		SyncWaitFraction: fractionOf(0.15),
		LatencySamples:   []float64{100, 130, 70, 100},
	})
	require.NoError(t, err)

	analyzer := NewDefaultAnalyzer(config.DefaultThresholds())
	assert.Empty(t, analyzer.Analyze(r))

	findings := analyzer.AnalyzeDeviceIndependent(r)
	require.Len(t, findings, 2)
	assert.Equal(t, common.Other, findings[0].Category)
	assert.Equal(t, "latency_jitter", findings[0].Detector)
	assert.Equal(t, common.SyncVariance, findings[1].Category)
	assert.Equal(t, 4, findings[1].DeviceCount)

	lagOnly := NewAnalyzer(&DeviceLagDetector{K: 1.5})
	assert.Empty(t, lagOnly.AnalyzeDeviceIndependent(r))
}
