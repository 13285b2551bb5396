package scaling

import (
	"fmt"
	"sort"

	"github.com/vhive-serverless/torchscale/pkg/common"

	log "github.com/sirupsen/logrus"
)

// ComputeScaling derives the scaling curve of one (model, batch size) group against the
// group's own single-device baseline. Points are returned in ascending device count and
// the baseline point has an efficiency of exactly 1.
func ComputeScaling(records []common.RunRecord) ([]common.ScalingPoint, error) {
	if len(records) == 0 {
		return nil, common.ErrEmptyGroup
	}

	key := records[0].Key()
	seen := make(map[int]bool, len(records))
	var baseline *common.RunRecord

	for i := range records {
		r := &records[i]
		if r.Key() != key {
			return nil, fmt.Errorf("%w: %s and %s", common.ErrMixedGroup, key, r.Key())
		}
		if seen[r.DeviceCount] {
			return nil, fmt.Errorf("%w: %s has %d GPUs twice", common.ErrDuplicateDeviceCount, key, r.DeviceCount)
		}
		seen[r.DeviceCount] = true

		if r.DeviceCount == common.BaselineDeviceCount {
			baseline = r
		}
	}

	if baseline == nil {
		return nil, &common.MissingBaselineError{Group: key}
	}

	points := make([]common.ScalingPoint, 0, len(records))
	for _, r := range records {
		point := common.ScalingPoint{
			Model:              r.Model,
			BatchSize:          r.BatchSize,
			DeviceCount:        r.DeviceCount,
			MeasuredThroughput: r.Throughput,
			IdealThroughput:    baseline.Throughput * float64(r.DeviceCount),
		}

		if r.DeviceCount == common.BaselineDeviceCount {
			point.Efficiency = 1.0
		} else {
			point.Efficiency = r.Throughput / point.IdealThroughput
		}

		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].DeviceCount < points[j].DeviceCount
	})

	log.Tracef("Scaling curve for %s: %d points", key, len(points))
	return points, nil
}
