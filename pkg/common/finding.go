package common

import (
	"fmt"
	"sort"
)

type Category int

const (
	DeviceLag Category = iota
	SyncVariance
	Other
)

var categoryNames = map[Category]string{
	DeviceLag:    "device_lag",
	SyncVariance: "sync_variance",
	Other:        "other",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for category, name := range categoryNames {
		if name == string(text) {
			*c = category
			return nil
		}
	}
	return fmt.Errorf("unknown finding category %q", string(text))
}

// Evidence carries the numbers a finding was derived from. Only the fields relevant to
// the finding's category are set.
type Evidence struct {
	DeviceIndex        *int    `json:"device_index,omitempty"`
	FastestDeviceIndex *int    `json:"fastest_device_index,omitempty"`
	DeviceTiming       float64 `json:"device_timing_ms,omitempty"`
	FastestTiming      float64 `json:"fastest_timing_ms,omitempty"`
	MeanTiming         float64 `json:"mean_timing_ms,omitempty"`
	StdDev             float64 `json:"stddev_ms,omitempty"`
	Delta              float64 `json:"delta_ms,omitempty"`
	ZScore             float64 `json:"z_score,omitempty"`

	SyncWaitFraction       float64 `json:"sync_wait_fraction,omitempty"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation,omitempty"`
	Threshold              float64 `json:"threshold,omitempty"`
}

type BottleneckFinding struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Severity    float64  `json:"severity"`
	Evidence    Evidence `json:"evidence"`
	Suggestion  string   `json:"suggestion,omitempty"`

	// Trial the finding was detected in.
	Model       string `json:"model"`
	BatchSize   int    `json:"batch_size"`
	DeviceCount int    `json:"device_count"`
	Detector    string `json:"detector"`
}

// SortFindings orders findings by descending severity. Ties are broken by category
// (DeviceLag, SyncVariance, Other) and then by trial and device so the order is stable
// across runs.
func SortFindings(findings []BottleneckFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.BatchSize != b.BatchSize {
			return a.BatchSize < b.BatchSize
		}
		if a.DeviceCount != b.DeviceCount {
			return a.DeviceCount < b.DeviceCount
		}
		if ai, bi := deviceIndexOf(a), deviceIndexOf(b); ai != bi {
			return ai < bi
		}
		return a.Description < b.Description
	})
}

func deviceIndexOf(f BottleneckFinding) int {
	if f.Evidence.DeviceIndex == nil {
		return -1
	}
	return *f.Evidence.DeviceIndex
}
