package bottleneck

import (
	"fmt"

	"github.com/vhive-serverless/torchscale/pkg/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DeviceLagDetector flags devices whose backward-pass timing lies more than K population
// standard deviations above the mean of the trial.
type DeviceLagDetector struct {
	K float64
}

func (d *DeviceLagDetector) Name() string {
	return "device_lag"
}

func (d *DeviceLagDetector) Detect(record common.RunRecord) []common.BottleneckFinding {
	timings := record.PerDeviceTimings
	if len(timings) < 2 {
		return nil
	}

	mean, stdDev := stat.PopMeanStdDev(timings, nil)
	if stdDev == 0 {
		return nil
	}

	fastest := floats.MinIdx(timings)
	limit := mean + d.K*stdDev

	var findings []common.BottleneckFinding
	for i, timing := range timings {
		if timing <= limit {
			continue
		}

		z := (timing - mean) / stdDev
		device, fastestDevice := i, fastest
		findings = append(findings, common.BottleneckFinding{
			Category: common.DeviceLag,
			Description: fmt.Sprintf("%s finishing backward pass slower than %s (%.1fms vs %.1fms, z=%.2f)",
				common.DeviceLabel(i), common.DeviceLabel(fastest), timing, timings[fastest], z),
			Severity: z,
			Evidence: common.Evidence{
				DeviceIndex:        &device,
				FastestDeviceIndex: &fastestDevice,
				DeviceTiming:       timing,
				FastestTiming:      timings[fastest],
				MeanTiming:         mean,
				StdDev:             stdDev,
				Delta:              timing - mean,
				ZScore:             z,
				Threshold:          d.K,
			},
			Suggestion: fmt.Sprintf("Check for system noise or thermal throttling on %s", common.DeviceLabel(i)),
		})
	}

	return findings
}
