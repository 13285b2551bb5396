package metric

import (
	"strconv"

	"github.com/vhive-serverless/torchscale/pkg/common"
)

type FindingRecord struct {
	Model       string  `csv:"model"`
	BatchSize   int     `csv:"batch_size"`
	DeviceCount int     `csv:"device_count"`
	Category    string  `csv:"category"`
	Detector    string  `csv:"detector"`
	Severity    float64 `csv:"severity"`
	Device      string  `csv:"device"`
	Description string  `csv:"description"`
	Suggestion  string  `csv:"suggestion"`
}

type WarningRecord struct {
	Kind    string `csv:"kind"`
	Source  string `csv:"source"`
	Message string `csv:"message"`
}

func NewFindingRecord(f common.BottleneckFinding) FindingRecord {
	record := FindingRecord{
		Model:       f.Model,
		BatchSize:   f.BatchSize,
		DeviceCount: f.DeviceCount,
		Category:    f.Category.String(),
		Detector:    f.Detector,
		Severity:    f.Severity,
		Description: f.Description,
		Suggestion:  f.Suggestion,
	}
	if f.Evidence.DeviceIndex != nil {
		record.Device = strconv.Itoa(*f.Evidence.DeviceIndex)
	}
	return record
}

func NewWarningRecord(w common.Warning) WarningRecord {
	return WarningRecord{
		Kind:    string(w.Kind),
		Source:  w.Source,
		Message: w.Message,
	}
}
