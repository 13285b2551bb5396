/*
 * MIT License
 *
 * Copyright (c) 2023 EASL and the vHive community
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package common

import "strings"

const (
	DevicePrefix           = "GPU"
	UnnamedExperiment      = "unnamed_experiment"
	BaselineDeviceCount    = 1
	PercentToFraction      = 100.0
	DeviceTimingsSeparator = ";"
)

const (
	// DefaultDeviceLagZScore Number of standard deviations above the mean per-device timing
	// after which a device is reported as lagging.
	DefaultDeviceLagZScore = 1.5

	// DefaultSyncWaitThreshold Fraction of the iteration cycle spent waiting on gradient
	// synchronization above which a SyncVariance finding is emitted (10%).
	DefaultSyncWaitThreshold = 0.10

	// DefaultLatencyCVThreshold Coefficient of variation of per-iteration latency above which
	// the iteration time is reported as jittery.
	DefaultLatencyCVThreshold = 0.15
)

// File patterns written by the benchmark and profiling runners.
const (
	BenchmarkResultsGlob = "benchmark_results*.json"
	RecordCSVGlob        = "*.csv"
	ProfileResultsGlob   = "profile_*.json"
)

// Report artifacts.
const (
	ReportJSONFile      = "report.json"
	ScalingCSVFile      = "scaling.csv"
	FindingsCSVFile     = "findings.csv"
	SummaryTableCSVFile = "table.csv"
	WarningsCSVFile     = "warnings.csv"
	RecordsCSVFile      = "records.csv"
	ScalingPlotFile     = "scaling_efficiency.png"
	MetricsTextfile     = "torchscale.prom"
)

var reportArtifacts = []string{
	ReportJSONFile, ScalingCSVFile, FindingsCSVFile, SummaryTableCSVFile,
	WarningsCSVFile, RecordsCSVFile, ScalingPlotFile, MetricsTextfile,
}

// IsReportArtifact reports whether name is a file written by the report exporter
// (<prefix>_<artifact>), so that a rerun over the same directory does not read its own output.
func IsReportArtifact(name string) bool {
	for _, artifact := range reportArtifacts {
		if strings.HasSuffix(name, "_"+artifact) {
			return true
		}
	}
	return false
}

type WarningKind string

const (
	WarningParseError       WarningKind = "parse_error"
	WarningMissingBaseline  WarningKind = "missing_baseline"
	WarningInsufficientData WarningKind = "insufficient_data"
	WarningMissingTrial     WarningKind = "missing_trial"
	WarningInvalidGroup     WarningKind = "invalid_group"
)
