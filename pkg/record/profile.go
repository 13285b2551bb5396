package record

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/vhive-serverless/torchscale/pkg/common"
)

const ProfilerDetectorName = "profiler"

type ProfiledBottleneck struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Suggestion  string `json:"suggestion"`
}

// ProfileSummary is the JSON summary the profiling wrapper writes next to the benchmark
// results (profile_gpu<N>.json).
type ProfileSummary struct {
	GPUCount            int                  `json:"gpu_count" validate:"gte=1"`
	Duration            int                  `json:"duration"`
	Target              string               `json:"target"`
	Bottlenecks         []ProfiledBottleneck `json:"bottlenecks"`
	SyncStallPercentage float64              `json:"sync_stall_percentage" validate:"gte=0"`
	ReportFile          string               `json:"report_file,omitempty"`
}

func ParseProfile(raw []byte) (ProfileSummary, error) {
	var profile ProfileSummary
	if err := json.Unmarshal(raw, &profile); err != nil {
		return profile, &common.ParseError{Err: err}
	}
	if err := common.ValidateStruct(&profile); err != nil {
		return profile, &common.ParseError{Err: err}
	}
	return profile, nil
}

// SyncWaitFraction converts the profiled stall percentage into a fraction in [0, 1].
func (p ProfileSummary) SyncWaitFraction() float64 {
	return math.Min(p.SyncStallPercentage/common.PercentToFraction, 1)
}

// Findings turns the bottlenecks named by the profiler into Other findings of the profiled
// GPU count. Severity is the profiled sync-wait fraction, the profile's only measured value.
func (p ProfileSummary) Findings() []common.BottleneckFinding {
	findings := make([]common.BottleneckFinding, 0, len(p.Bottlenecks))
	for _, b := range p.Bottlenecks {
		description := b.Type
		if b.Description != "" {
			description = fmt.Sprintf("%s: %s", b.Type, b.Description)
		}
		if b.Impact != "" {
			description = fmt.Sprintf("%s (%s)", description, b.Impact)
		}

		findings = append(findings, common.BottleneckFinding{
			Category:    common.Other,
			Description: description,
			Severity:    p.SyncWaitFraction(),
			Evidence: common.Evidence{
				SyncWaitFraction: p.SyncWaitFraction(),
			},
			Suggestion:  b.Suggestion,
			DeviceCount: p.GPUCount,
			Detector:    ProfilerDetectorName,
		})
	}
	return findings
}
