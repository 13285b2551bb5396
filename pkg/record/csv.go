package record

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/vhive-serverless/torchscale/pkg/common"
)

// CSVRow is the flat on-disk form of a RunRecord. Optional columns are left empty when
// the measurement is absent; per-device timings are joined with ';'.
type CSVRow struct {
	ExperimentName   string `csv:"experiment_name"`
	Model            string `csv:"model"`
	BatchSize        string `csv:"batch_size"`
	DeviceCount      string `csv:"device_count"`
	Throughput       string `csv:"throughput"`
	IterationLatency string `csv:"iteration_latency"`
	PerDeviceTimings string `csv:"per_device_timings"`
	SyncWaitFraction string `csv:"sync_wait_fraction"`
	LatencySamples   string `csv:"latency_samples"`
}

func ToCSVRow(r common.RunRecord) CSVRow {
	row := CSVRow{
		ExperimentName:   r.ExperimentName,
		Model:            r.Model,
		BatchSize:        strconv.Itoa(r.BatchSize),
		DeviceCount:      strconv.Itoa(r.DeviceCount),
		Throughput:       common.FormatFloat(r.Throughput),
		IterationLatency: common.FormatFloat(r.IterationLatency),
		PerDeviceTimings: common.JoinFloats(r.PerDeviceTimings, common.DeviceTimingsSeparator),
		LatencySamples:   common.JoinFloats(r.LatencySamples, common.DeviceTimingsSeparator),
	}
	if r.SyncWaitFraction != nil {
		row.SyncWaitFraction = common.FormatFloat(*r.SyncWaitFraction)
	}
	return row
}

func (row *CSVRow) toRunRecord() (common.RunRecord, error) {
	batchSize, err := strconv.Atoi(strings.TrimSpace(row.BatchSize))
	if err != nil {
		return common.RunRecord{}, fmt.Errorf("batch_size: %w", err)
	}
	deviceCount, err := strconv.Atoi(strings.TrimSpace(row.DeviceCount))
	if err != nil {
		return common.RunRecord{}, fmt.Errorf("device_count: %w", err)
	}
	throughput, err := common.ParseFloat(row.Throughput)
	if err != nil {
		return common.RunRecord{}, fmt.Errorf("throughput: %w", err)
	}
	latency, err := common.ParseFloat(row.IterationLatency)
	if err != nil {
		return common.RunRecord{}, fmt.Errorf("iteration_latency: %w", err)
	}
	timings, err := common.SliceAtof(row.PerDeviceTimings, common.DeviceTimingsSeparator)
	if err != nil {
		return common.RunRecord{}, fmt.Errorf("per_device_timings: %w", err)
	}
	samples, err := common.SliceAtof(row.LatencySamples, common.DeviceTimingsSeparator)
	if err != nil {
		return common.RunRecord{}, fmt.Errorf("latency_samples: %w", err)
	}

	var syncWait *float64
	if strings.TrimSpace(row.SyncWaitFraction) != "" {
		fraction, err := common.ParseFloat(row.SyncWaitFraction)
		if err != nil {
			return common.RunRecord{}, fmt.Errorf("sync_wait_fraction: %w", err)
		}
		syncWait = &fraction
	}

	return common.NewRunRecord(common.RunRecord{
		ExperimentName:   row.ExperimentName,
		Model:            strings.TrimSpace(row.Model),
		BatchSize:        batchSize,
		DeviceCount:      deviceCount,
		Throughput:       throughput,
		IterationLatency: latency,
		PerDeviceTimings: timings,
		SyncWaitFraction: syncWait,
		LatencySamples:   samples,
	})
}

// IngestCSV reads RunRecords from a CSV file with a header row. A malformed file is a
// single ParseError; a malformed row only drops that row.
func IngestCSV(source string, in io.Reader) ([]common.RunRecord, []error) {
	var rows []*CSVRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, []error{&common.ParseError{Source: source, Err: err}}
	}

	var records []common.RunRecord
	var errs []error
	for i, row := range rows {
		record, err := row.toRunRecord()
		if err != nil {
			//* +2: one for the header, one for 1-based line numbers.
			errs = append(errs, &common.ParseError{Source: fmt.Sprintf("%s:%d", source, i+2), Err: err})
			continue
		}
		records = append(records, record)
	}

	return records, errs
}
