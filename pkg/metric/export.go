package metric

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"github.com/vhive-serverless/torchscale/pkg/common"
	"github.com/vhive-serverless/torchscale/pkg/record"

	log "github.com/sirupsen/logrus"
)

// Exporter writes the artifacts of one report next to each other, every file named
// <outputPathPrefix>_<artifact>.
type Exporter struct {
	outputPathPrefix string
}

func NewExporter(outputPathPrefix string) Exporter {
	return Exporter{outputPathPrefix: outputPathPrefix}
}

func (ep *Exporter) Path(artifact string) string {
	return ep.outputPathPrefix + "_" + artifact
}

// FinishAndSave writes the report JSON and its CSV tables. Returns the written files.
func (ep *Exporter) FinishAndSave(report common.ExperimentReport, records []common.RunRecord) ([]string, error) {
	if dir := filepath.Dir(ep.outputPathPrefix); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}

	var written []string
	save := func(artifact string, write func(string) error) error {
		path := ep.Path(artifact)
		if err := write(path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := save(common.ReportJSONFile, func(path string) error {
		return ExportJSON(path, report)
	}); err != nil {
		return written, err
	}

	if err := save(common.ScalingCSVFile, func(path string) error {
		return ExportCSV(path, &report.ScalingPoints)
	}); err != nil {
		return written, err
	}

	findings := lo.Map(report.Findings, func(f common.BottleneckFinding, _ int) FindingRecord {
		return NewFindingRecord(f)
	})
	if err := save(common.FindingsCSVFile, func(path string) error {
		return ExportCSV(path, &findings)
	}); err != nil {
		return written, err
	}

	if err := save(common.SummaryTableCSVFile, func(path string) error {
		return ExportCSV(path, &report.Table)
	}); err != nil {
		return written, err
	}

	if len(report.Warnings) > 0 {
		warnings := lo.Map(report.Warnings, func(w common.Warning, _ int) WarningRecord {
			return NewWarningRecord(w)
		})
		if err := save(common.WarningsCSVFile, func(path string) error {
			return ExportCSV(path, &warnings)
		}); err != nil {
			return written, err
		}
	}

	if err := save(common.RecordsCSVFile, func(path string) error {
		return ExportRecords(path, records)
	}); err != nil {
		return written, err
	}

	log.Debugf("Saved %d report artifacts under %s", len(written), ep.outputPathPrefix)
	return written, nil
}

func ExportJSON(path string, report common.ExperimentReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// ExportCSV writes rows, a pointer to a slice of csv-tagged structs.
func ExportCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(rows, f)
}

// ExportRecords writes the normalized run records in the format read back by the store.
func ExportRecords(path string, records []common.RunRecord) error {
	rows := lo.Map(records, func(r common.RunRecord, _ int) record.CSVRow {
		return record.ToCSVRow(r)
	})
	return ExportCSV(path, &rows)
}

// ReadReport loads a report previously written by ExportJSON.
func ReadReport(path string) (common.ExperimentReport, error) {
	var report common.ExperimentReport

	raw, err := os.ReadFile(path)
	if err != nil {
		return report, err
	}

	err = json.Unmarshal(raw, &report)
	return report, err
}
