package bottleneck

import (
	"github.com/vhive-serverless/torchscale/pkg/common"
	"github.com/vhive-serverless/torchscale/pkg/config"

	log "github.com/sirupsen/logrus"
)

// Detector is one heuristic pass over a trial. It returns zero or more findings and must
// not modify the record.
type Detector interface {
	Name() string
	Detect(record common.RunRecord) []common.BottleneckFinding
}

// DeviceIndependent marks detectors that judge a trial without its per-device timings.
type DeviceIndependent interface {
	Detector
	DeviceIndependent()
}

// Analyzer runs every registered detector over a record and ranks the merged findings.
// Findings are advisory: they point at likely causes, they do not prove them.
type Analyzer struct {
	detectors []Detector
}

func NewAnalyzer(detectors ...Detector) *Analyzer {
	return &Analyzer{detectors: detectors}
}

func NewDefaultAnalyzer(thresholds config.Thresholds) *Analyzer {
	return NewAnalyzer(
		&DeviceLagDetector{K: thresholds.DeviceLagZScore},
		&SyncVarianceDetector{Threshold: thresholds.SyncWaitFraction},
		&LatencyJitterDetector{Threshold: thresholds.LatencyCVThreshold},
	)
}

func (a *Analyzer) Register(detector Detector) {
	a.detectors = append(a.detectors, detector)
}

func (a *Analyzer) Detectors() []Detector {
	return append([]Detector(nil), a.detectors...)
}

// Analyze returns the ranked findings of one record. A record without per-device timings
// yields no findings.
func (a *Analyzer) Analyze(record common.RunRecord) []common.BottleneckFinding {
	findings := []common.BottleneckFinding{}
	if !record.HasDeviceTimings() {
		log.Debugf("Skipping stall analysis of %s: %v", record, common.ErrInsufficientData)
		return findings
	}

	findings = a.run(record, a.detectors)
	log.Tracef("%s: %d findings", record, len(findings))
	return findings
}

// AnalyzeDeviceIndependent runs only the DeviceIndependent detectors. It serves trials that
// carry no per-device timings, which Analyze skips.
func (a *Analyzer) AnalyzeDeviceIndependent(record common.RunRecord) []common.BottleneckFinding {
	var detectors []Detector
	for _, detector := range a.detectors {
		if _, ok := detector.(DeviceIndependent); ok {
			detectors = append(detectors, detector)
		}
	}

	return a.run(record, detectors)
}

func (a *Analyzer) run(record common.RunRecord, detectors []Detector) []common.BottleneckFinding {
	findings := []common.BottleneckFinding{}
	for _, detector := range detectors {
		for _, finding := range detector.Detect(record) {
			finding.Model = record.Model
			finding.BatchSize = record.BatchSize
			finding.DeviceCount = record.DeviceCount
			finding.Detector = detector.Name()
			findings = append(findings, finding)
		}
	}

	common.SortFindings(findings)
	return findings
}
