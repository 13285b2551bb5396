package bottleneck

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/vhive-serverless/torchscale/pkg/common"

	log "github.com/sirupsen/logrus"
)

// LatencyJitterDetector flags trials whose iteration latency samples vary by more than
// Threshold relative to the reported iteration latency.
type LatencyJitterDetector struct {
	Threshold float64
}

func (d *LatencyJitterDetector) Name() string {
	return "latency_jitter"
}

func (d *LatencyJitterDetector) DeviceIndependent() {}

func (d *LatencyJitterDetector) Detect(record common.RunRecord) []common.BottleneckFinding {
	if len(record.LatencySamples) < 2 || d.Threshold <= 0 {
		return nil
	}

	stdDev, err := stats.StandardDeviationSample(stats.Float64Data(record.LatencySamples))
	if err != nil {
		log.Debugf("Latency samples of %s: %v", record, err)
		return nil
	}

	cv := stdDev / record.IterationLatency
	if cv <= d.Threshold {
		return nil
	}

	return []common.BottleneckFinding{{
		Category:    common.Other,
		Description: fmt.Sprintf("Unstable iteration latency: coefficient of variation %.2f above %.2f", cv, d.Threshold),
		Severity:    (cv - d.Threshold) / d.Threshold,
		Evidence: common.Evidence{
			StdDev:                 stdDev,
			CoefficientOfVariation: cv,
			Threshold:              d.Threshold,
		},
		Suggestion: "Check the input pipeline for data-loader stalls",
	}}
}
