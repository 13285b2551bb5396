package metric

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhive-serverless/torchscale/pkg/common"
	"github.com/vhive-serverless/torchscale/pkg/config"
	"github.com/vhive-serverless/torchscale/pkg/record"
	"github.com/vhive-serverless/torchscale/pkg/report"
)

func sampleReport(t *testing.T) (common.ExperimentReport, []common.RunRecord) {
	var records []common.RunRecord
	for _, r := range []common.RunRecord{
		{Model: "resnet50", BatchSize: 64, DeviceCount: 1, Throughput: 500, IterationLatency: 128, PerDeviceTimings: []float64{128}},
		{Model: "resnet50", BatchSize: 64, DeviceCount: 4, Throughput: 1450, IterationLatency: 176,
			PerDeviceTimings: []float64{100, 102, 98, 140}},
	} {
		normalized, err := common.NewRunRecord(r)
		require.NoError(t, err)
		records = append(records, normalized)
	}

	store := record.NewStore()
	store.Add(records...)
	store.ReportError(&common.ParseError{Source: "records.csv:7", Err: common.ErrEmptyGroup})

	return report.NewPass(config.DefaultThresholds(), nil).Run("ddp", store, nil), records
}

func TestFinishAndSave(t *testing.T) {
	rep, records := sampleReport(t)
	exporter := NewExporter(filepath.Join(t.TempDir(), "out", "ddp"))

	written, err := exporter.FinishAndSave(rep, records)
	require.NoError(t, err)
	assert.Len(t, written, 6)
	for _, path := range written {
		assert.FileExists(t, path)
	}

	parsed, err := ReadReport(exporter.Path(common.ReportJSONFile))
	require.NoError(t, err)
	assert.Equal(t, rep.ID, parsed.ID)
	assert.Equal(t, rep.ScalingPoints, parsed.ScalingPoints)
	require.Len(t, parsed.Findings, 1)
	assert.Equal(t, common.DeviceLag, parsed.Findings[0].Category)

	f, err := os.Open(exporter.Path(common.ScalingCSVFile))
	require.NoError(t, err)
	defer f.Close()

	var points []common.ScalingPoint
	require.NoError(t, gocsv.UnmarshalFile(f, &points))
	require.Len(t, points, 2)
	assert.InDelta(t, 0.725, points[1].Efficiency, 1e-12)

	findings, err := os.Open(exporter.Path(common.FindingsCSVFile))
	require.NoError(t, err)
	defer findings.Close()

	var rows []FindingRecord
	require.NoError(t, gocsv.UnmarshalFile(findings, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "device_lag", rows[0].Category)
	assert.Equal(t, "3", rows[0].Device)
}

func TestExportedRecordsLoadBack(t *testing.T) {
	_, records := sampleReport(t)
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, ExportRecords(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	loaded, errs := record.IngestCSV(path, f)
	assert.Empty(t, errs)
	assert.Equal(t, records, loaded)
}

func TestWriteTextfile(t *testing.T) {
	rep, _ := sampleReport(t)
	path := filepath.Join(t.TempDir(), common.MetricsTextfile)

	require.NoError(t, NewScaleRegistry().WriteTextfile(path, rep))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, `torchscale_scaling_efficiency{batch_size="64",experiment="ddp",gpus="4",model="resnet50"} 0.725`)
	assert.Contains(t, text, `torchscale_bottleneck_findings{category="device_lag",experiment="ddp"} 1`)
	assert.Contains(t, text, `torchscale_report_warnings{experiment="ddp",kind="parse_error"} 1`)
}

func TestPlotScaling(t *testing.T) {
	rep, _ := sampleReport(t)
	path := filepath.Join(t.TempDir(), common.ScalingPlotFile)

	require.NoError(t, PlotScaling(path, rep))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, PlotScaling(path, common.ExperimentReport{}))
}

func TestRerunOverOwnOutput(t *testing.T) {
	dir := t.TempDir()
	_, records := sampleReport(t)
	require.NoError(t, ExportRecords(filepath.Join(dir, "records.csv"), records))

	for run := 0; run < 2; run++ {
		store, err := record.LoadDirectory(dir)
		require.NoError(t, err)
		require.Equal(t, 2, store.Len(), "run %d", run)

		rep := report.NewPass(config.DefaultThresholds(), nil).Run("exp", store, nil)
		assert.Len(t, rep.ScalingPoints, 2, "run %d", run)
		assert.Empty(t, rep.Warnings, "run %d", run)

		exporter := NewExporter(filepath.Join(dir, "exp"))
		_, err = exporter.FinishAndSave(rep, store.Records())
		require.NoError(t, err)
	}
}

func TestScaleRegistryGatherer(t *testing.T) {
	rep, _ := sampleReport(t)
	registry := NewScaleRegistry()
	registry.Record(rep)

	families, err := registry.Gatherer().Gather()
	require.NoError(t, err)

	names := make(map[string]int)
	for _, family := range families {
		names[family.GetName()] = len(family.GetMetric())
	}
	assert.Equal(t, 2, names["torchscale_scaling_efficiency"])
	assert.Equal(t, 1, names["torchscale_bottleneck_findings"])
	assert.Equal(t, 1, names["torchscale_report_warnings"])
}
