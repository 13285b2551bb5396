package bottleneck

import (
	"fmt"

	"github.com/vhive-serverless/torchscale/pkg/common"
)

// SyncVarianceDetector flags trials that spend more than Threshold of their cycle time
// waiting on gradient synchronization. Severity is the relative overshoot.
type SyncVarianceDetector struct {
	Threshold float64
}

func (d *SyncVarianceDetector) Name() string {
	return "sync_variance"
}

func (d *SyncVarianceDetector) DeviceIndependent() {}

func (d *SyncVarianceDetector) Detect(record common.RunRecord) []common.BottleneckFinding {
	if !record.HasSyncWaitFraction() || d.Threshold <= 0 {
		return nil
	}

	fraction := *record.SyncWaitFraction
	if fraction <= d.Threshold {
		return nil
	}

	return []common.BottleneckFinding{{
		Category: common.SyncVariance,
		Description: fmt.Sprintf("High variance in gradient synchronization: %.1f%% of cycle time spent waiting (threshold %.1f%%)",
			fraction*common.PercentToFraction, d.Threshold*common.PercentToFraction),
		Severity: (fraction - d.Threshold) / d.Threshold,
		Evidence: common.Evidence{
			SyncWaitFraction: fraction,
			Threshold:        d.Threshold,
		},
		Suggestion: "Enable gradient bucketing or use ZeRO optimizer",
	}}
}
