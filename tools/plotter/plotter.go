package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/samber/lo"
	"github.com/vhive-serverless/torchscale/pkg/common"
	"github.com/vhive-serverless/torchscale/pkg/metric"
	"gonum.org/v1/gonum/stat"

	log "github.com/sirupsen/logrus"
)

var reportPattern = regexp.MustCompile(`^(.+)_report\.json$`)

func main() {
	var (
		inputDir   = flag.String("i", "data/out", "Path to the directory with report JSON files")
		outputDir  = flag.String("o", "figs", "Path to the directory for output figures")
		debugLevel = flag.String("d", "info", "Debug level: info, debug")
	)
	flag.Parse()
	log.SetOutput(os.Stdout)

	switch *debugLevel {
	case "info":
		log.SetLevel(log.InfoLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug mode is enabled")
	}

	reports := parseFiles(*inputDir)
	log.Info("The number of reports found is: ", len(reports))

	if err := plotFigs(*outputDir, reports); err != nil {
		log.Fatal(err)
	}
}

func plotFigs(outputDir string, reports map[string]common.ExperimentReport) error {
	if _, err := os.Stat(outputDir); errors.Is(err, os.ErrNotExist) {
		log.Info("Creating the output directory")
		if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
			return err
		}
	}

	names := lo.Keys(reports)
	sort.Strings(names)

	for _, name := range names {
		r := reports[name]
		if len(r.ScalingPoints) == 0 {
			log.Warnf("Report %s has no scaling points", name)
			continue
		}

		efficiencies := lo.Map(r.ScalingPoints, func(p common.ScalingPoint, _ int) float64 {
			return p.Efficiency
		})
		log.Infof("%s: mean scaling efficiency %.3f over %d points",
			name, stat.Mean(efficiencies, nil), len(efficiencies))

		path := filepath.Join(outputDir, name+"_"+common.ScalingPlotFile)
		if err := metric.PlotScaling(path, r); err != nil {
			return err
		}
		log.Debug("Plotted ", path)
	}

	return nil
}

func parseFiles(inputDir string) map[string]common.ExperimentReport {
	files, err := os.ReadDir(inputDir)
	if err != nil {
		log.Fatal("Cannot open the input directory:", err)
	}

	reports := make(map[string]common.ExperimentReport)
	for _, file := range files {
		match := reportPattern.FindStringSubmatch(file.Name())
		if match == nil {
			continue
		}

		log.Debug("Open file ", file.Name())

		r, err := metric.ReadReport(filepath.Join(inputDir, file.Name()))
		if err != nil {
			log.Warnf("Skipping %s: %v", file.Name(), err)
			continue
		}
		reports[match[1]] = r
	}

	return reports
}
