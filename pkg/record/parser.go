package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vhive-serverless/torchscale/pkg/common"
)

// rawRecord accepts both the native field names and the ones written by the original
// benchmark runner (gpu_count, avg_throughput).
type rawRecord struct {
	ExperimentName   string    `json:"experiment_name"`
	Model            string    `json:"model"`
	BatchSize        *int      `json:"batch_size"`
	DeviceCount      *int      `json:"device_count"`
	GPUCount         *int      `json:"gpu_count"`
	Throughput       *float64  `json:"throughput"`
	AvgThroughput    *float64  `json:"avg_throughput"`
	IterationLatency *float64  `json:"iteration_latency"`
	PerDeviceTimings []float64 `json:"per_device_timings"`
	SyncWaitFraction *float64  `json:"sync_wait_fraction"`
	LatencySamples   []float64 `json:"latency_samples"`
}

func (r *rawRecord) toRunRecord() (common.RunRecord, error) {
	deviceCount := firstInt(r.DeviceCount, r.GPUCount)
	throughput := firstFloat(r.Throughput, r.AvgThroughput)

	switch {
	case r.Model == "":
		return common.RunRecord{}, errors.New("missing field model")
	case r.BatchSize == nil:
		return common.RunRecord{}, errors.New("missing field batch_size")
	case deviceCount == nil:
		return common.RunRecord{}, errors.New("missing field device_count")
	case throughput == nil:
		return common.RunRecord{}, errors.New("missing field throughput")
	case r.IterationLatency == nil:
		return common.RunRecord{}, errors.New("missing field iteration_latency")
	}

	return common.NewRunRecord(common.RunRecord{
		ExperimentName:   r.ExperimentName,
		Model:            r.Model,
		BatchSize:        *r.BatchSize,
		DeviceCount:      *deviceCount,
		Throughput:       *throughput,
		IterationLatency: *r.IterationLatency,
		PerDeviceTimings: r.PerDeviceTimings,
		SyncWaitFraction: r.SyncWaitFraction,
		LatencySamples:   r.LatencySamples,
	})
}

// Ingest parses one trial payload. Optional measurements may be absent; anything that
// prevents building a valid RunRecord is reported as a *common.ParseError.
func Ingest(raw []byte) (common.RunRecord, error) {
	return ingest("", raw)
}

func ingest(source string, raw []byte) (common.RunRecord, error) {
	var decoded rawRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return common.RunRecord{}, &common.ParseError{Source: source, Err: err}
	}

	record, err := decoded.toRunRecord()
	if err != nil {
		return common.RunRecord{}, &common.ParseError{Source: source, Err: err}
	}

	return record, nil
}

// IngestAll parses a payload holding either a single trial or an array of trials.
// Broken elements are reported individually and do not prevent the others from loading.
func IngestAll(source string, raw []byte) ([]common.RunRecord, []error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		record, err := ingest(source, trimmed)
		if err != nil {
			return nil, []error{err}
		}
		return []common.RunRecord{record}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, []error{&common.ParseError{Source: source, Err: err}}
	}

	var records []common.RunRecord
	var errs []error
	for i, element := range elements {
		record, err := ingest(fmt.Sprintf("%s[%d]", source, i), element)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}

	return records, errs
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
