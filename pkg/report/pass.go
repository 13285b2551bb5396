package report

import (
	"errors"

	"github.com/samber/lo"
	"github.com/vhive-serverless/torchscale/pkg/bottleneck"
	"github.com/vhive-serverless/torchscale/pkg/common"
	"github.com/vhive-serverless/torchscale/pkg/config"
	"github.com/vhive-serverless/torchscale/pkg/record"
	"github.com/vhive-serverless/torchscale/pkg/scaling"

	log "github.com/sirupsen/logrus"
)

// Pass is one full analysis of a record store. Incomplete trials and groups degrade into
// report warnings and never abort the pass. Trials without per-device timings still go
// through the device-independent detectors, and profiled bottlenecks are reported as
// Other findings.
type Pass struct {
	thresholds config.Thresholds
	analyzer   *bottleneck.Analyzer
}

// NewPass builds a pass around analyzer, or around the default detectors tuned with
// thresholds when analyzer is nil.
func NewPass(thresholds config.Thresholds, analyzer *bottleneck.Analyzer) *Pass {
	if analyzer == nil {
		analyzer = bottleneck.NewDefaultAnalyzer(thresholds)
	}

	return &Pass{
		thresholds: thresholds,
		analyzer:   analyzer,
	}
}

func (p *Pass) Thresholds() config.Thresholds {
	return p.thresholds
}

func (p *Pass) Run(experimentName string, store *record.Store, sweep *config.SweepConfiguration) common.ExperimentReport {
	if experimentName == "" && sweep != nil {
		experimentName = sweep.ExperimentName
	}
	log.Infof("Analyzing %d run records of %s (lag z=%.2f, sync threshold=%.2f)",
		store.Len(), experimentName, p.thresholds.DeviceLagZScore, p.thresholds.SyncWaitFraction)

	warnings := lo.Map(store.Errors(), func(err error, _ int) common.Warning {
		return parseWarning(err)
	})

	var points []common.ScalingPoint
	groups := store.Groups()
	for _, key := range store.GroupKeys() {
		curve, err := scaling.ComputeScaling(groups[key])
		if err != nil {
			log.Warnf("Skipping scaling curve for %s: %v", key, err)

			kind := common.WarningInvalidGroup
			if errors.Is(err, common.ErrMissingBaseline) {
				kind = common.WarningMissingBaseline
			}
			warnings = append(warnings, common.Warning{Kind: kind, Source: key.String(), Message: err.Error()})
			continue
		}
		points = append(points, curve...)
	}

	records := store.Records()
	var findings []common.BottleneckFinding
	for _, r := range records {
		if !r.HasDeviceTimings() {
			warnings = append(warnings, common.Warning{
				Kind:    common.WarningInsufficientData,
				Source:  r.String(),
				Message: common.ErrInsufficientData.Error(),
			})
			findings = append(findings, p.analyzer.AnalyzeDeviceIndependent(r)...)
			continue
		}
		findings = append(findings, p.analyzer.Analyze(r)...)
	}

	for _, profile := range store.Profiles() {
		findings = append(findings, profile.Findings()...)
	}

	if sweep != nil {
		warnings = append(warnings, missingTrials(sweep, records)...)
	}

	report := Aggregate(experimentName, records, points, findings)
	report.Warnings = warnings

	log.Infof("Report %s: %d scaling points, %d findings, %d warnings",
		report.ID, len(report.ScalingPoints), len(report.Findings), len(report.Warnings))
	return report
}

func parseWarning(err error) common.Warning {
	warning := common.Warning{Kind: common.WarningParseError, Message: err.Error()}

	var parseErr *common.ParseError
	if errors.As(err, &parseErr) {
		warning.Source = parseErr.Source
		if parseErr.Err != nil {
			warning.Message = parseErr.Err.Error()
		}
	}
	return warning
}

// missingTrials lists the sweep combinations that produced no record.
func missingTrials(sweep *config.SweepConfiguration, records []common.RunRecord) []common.Warning {
	present := lo.Map(records, func(r common.RunRecord, _ int) config.Trial {
		return config.Trial{Model: r.Model, BatchSize: r.BatchSize, DeviceCount: r.DeviceCount}
	})
	missing, _ := lo.Difference(sweep.Trials(), present)

	return lo.Map(missing, func(t config.Trial, _ int) common.Warning {
		source := common.RunRecord{Model: t.Model, BatchSize: t.BatchSize, DeviceCount: t.DeviceCount}.String()
		log.Debugf("No record for configured trial %s", source)
		return common.Warning{
			Kind:    common.WarningMissingTrial,
			Source:  source,
			Message: "configured in the sweep but no run record was found",
		}
	})
}
