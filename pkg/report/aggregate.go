package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"github.com/vhive-serverless/torchscale/pkg/common"
	"gonum.org/v1/gonum/stat"

	log "github.com/sirupsen/logrus"
)

const latencyPercentile = 95

type trialKey struct {
	key         common.GroupKey
	deviceCount int
}

// Aggregate merges the outputs of one analysis pass into a report. The inputs are copied
// and sorted, so neither their order nor their contents are touched.
func Aggregate(experimentName string, records []common.RunRecord, points []common.ScalingPoint,
	findings []common.BottleneckFinding) common.ExperimentReport {

	if experimentName == "" {
		experimentName = common.UnnamedExperiment
	}

	sortedRecords := append([]common.RunRecord(nil), records...)
	common.SortRunRecords(sortedRecords)

	sortedPoints := append([]common.ScalingPoint{}, points...)
	common.SortScalingPoints(sortedPoints)

	sortedFindings := append([]common.BottleneckFinding{}, findings...)
	common.SortFindings(sortedFindings)

	return common.ExperimentReport{
		ID:             uuid.New().String(),
		ExperimentName: experimentName,
		GeneratedAt:    time.Now().UTC(),
		ScalingPoints:  sortedPoints,
		Findings:       sortedFindings,
		Summary:        summarize(sortedRecords),
		Table:          buildTable(sortedRecords, sortedPoints, sortedFindings),
	}
}

func summarize(records []common.RunRecord) common.SummaryStatistics {
	summary := common.SummaryStatistics{RecordCount: len(records)}
	if len(records) == 0 {
		return summary
	}

	throughputs := lo.Map(records, func(r common.RunRecord, _ int) float64 {
		return r.Throughput
	})
	latencies := lo.Map(records, func(r common.RunRecord, _ int) float64 {
		return r.IterationLatency
	})

	summary.ThroughputMean, summary.ThroughputVariance = stat.PopMeanVariance(throughputs, nil)
	summary.LatencyMean, summary.LatencyVariance = stat.PopMeanVariance(latencies, nil)

	var err error
	if summary.LatencyMedian, err = stats.Median(latencies); err != nil {
		log.Debugf("Latency median: %v", err)
	}
	if summary.LatencyP95, err = stats.Percentile(latencies, latencyPercentile); err != nil {
		log.Debugf("Latency p%d: %v", latencyPercentile, err)
	}

	return summary
}

func buildTable(records []common.RunRecord, points []common.ScalingPoint,
	findings []common.BottleneckFinding) []common.TableRow {

	efficiencies := make(map[trialKey]float64, len(points))
	for _, p := range points {
		efficiencies[trialKey{key: p.Key(), deviceCount: p.DeviceCount}] = p.Efficiency
	}

	findingCounts := lo.CountValuesBy(findings, func(f common.BottleneckFinding) trialKey {
		return trialKey{
			key:         common.GroupKey{Model: f.Model, BatchSize: f.BatchSize},
			deviceCount: f.DeviceCount,
		}
	})

	return lo.Map(records, func(r common.RunRecord, _ int) common.TableRow {
		trial := trialKey{key: r.Key(), deviceCount: r.DeviceCount}
		row := common.TableRow{
			Model:            r.Model,
			BatchSize:        r.BatchSize,
			DeviceCount:      r.DeviceCount,
			Throughput:       r.Throughput,
			IterationLatency: r.IterationLatency,
			FindingCount:     findingCounts[trial],
		}
		if efficiency, ok := efficiencies[trial]; ok {
			row.Efficiency = &efficiency
		}
		return row
	})
}
