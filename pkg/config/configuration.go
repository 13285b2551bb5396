package config

import (
	"github.com/vhive-serverless/torchscale/pkg/common"
)

// Thresholds tune the bottleneck detectors. They travel with the analysis pass instead of
// living in package state so that every experiment can be analyzed with its own values.
type Thresholds struct {
	DeviceLagZScore    float64 `json:"DeviceLagZScore" yaml:"device_lag_z" validate:"gt=0"`
	SyncWaitFraction   float64 `json:"SyncWaitThreshold" yaml:"sync_wait_threshold" validate:"gt=0,lte=1"`
	LatencyCVThreshold float64 `json:"LatencyCVThreshold" yaml:"latency_cv_threshold" validate:"gt=0"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DeviceLagZScore:    common.DefaultDeviceLagZScore,
		SyncWaitFraction:   common.DefaultSyncWaitThreshold,
		LatencyCVThreshold: common.DefaultLatencyCVThreshold,
	}
}

// Merge returns t with every non-zero field of override applied on top.
func (t Thresholds) Merge(override Thresholds) Thresholds {
	if override.DeviceLagZScore > 0 {
		t.DeviceLagZScore = override.DeviceLagZScore
	}
	if override.SyncWaitFraction > 0 {
		t.SyncWaitFraction = override.SyncWaitFraction
	}
	if override.LatencyCVThreshold > 0 {
		t.LatencyCVThreshold = override.LatencyCVThreshold
	}
	return t
}

func (t Thresholds) Validate() error {
	return common.ValidateStruct(t)
}

type AnalyzerConfiguration struct {
	ExperimentName string `json:"ExperimentName"`

	SourceDirectory  string `json:"SourceDirectory" validate:"required"`
	OutputPathPrefix string `json:"OutputPathPrefix" validate:"required"`
	SweepPath        string `json:"SweepPath"`

	DeviceLagZScore    float64 `json:"DeviceLagZScore" validate:"gte=0"`
	SyncWaitThreshold  float64 `json:"SyncWaitThreshold" validate:"gte=0,lte=1"`
	LatencyCVThreshold float64 `json:"LatencyCVThreshold" validate:"gte=0"`

	EnablePlot      bool   `json:"EnablePlot"`
	MetricsTextfile string `json:"MetricsTextfile"`
}

// Thresholds returns the configured detector thresholds, falling back to the defaults
// for every value left at zero.
func (c *AnalyzerConfiguration) Thresholds() Thresholds {
	return DefaultThresholds().Merge(Thresholds{
		DeviceLagZScore:    c.DeviceLagZScore,
		SyncWaitFraction:   c.SyncWaitThreshold,
		LatencyCVThreshold: c.LatencyCVThreshold,
	})
}

type ProfilingConfiguration struct {
	Enabled bool   `yaml:"enabled"`
	Tool    string `yaml:"tool"`
	Trigger string `yaml:"trigger"`
}

// SweepConfiguration describes which trials an experiment was meant to run.
type SweepConfiguration struct {
	ExperimentName string                 `yaml:"experiment_name"`
	Models         []string               `yaml:"models" validate:"dive,required"`
	BatchSizes     []int                  `yaml:"batch_sizes" validate:"dive,gt=0"`
	GPUCounts      []int                  `yaml:"gpu_counts" validate:"dive,gte=1"`
	Profiling      ProfilingConfiguration `yaml:"profiling"`
	Analysis       Thresholds             `yaml:"analysis" validate:"-"`
}

// Trial is one (model, batch size, gpu count) combination of a sweep.
type Trial struct {
	Model       string
	BatchSize   int
	DeviceCount int
}

func (s *SweepConfiguration) Trials() []Trial {
	trials := make([]Trial, 0, len(s.Models)*len(s.BatchSizes)*len(s.GPUCounts))
	for _, model := range s.Models {
		for _, batchSize := range s.BatchSizes {
			for _, gpuCount := range s.GPUCounts {
				trials = append(trials, Trial{Model: model, BatchSize: batchSize, DeviceCount: gpuCount})
			}
		}
	}
	return trials
}
