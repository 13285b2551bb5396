package main

import (
	"flag"
	"os"
	"time"

	"github.com/vhive-serverless/torchscale/pkg/common"
	"github.com/vhive-serverless/torchscale/pkg/config"
	"github.com/vhive-serverless/torchscale/pkg/metric"
	"github.com/vhive-serverless/torchscale/pkg/record"
	"github.com/vhive-serverless/torchscale/pkg/report"

	log "github.com/sirupsen/logrus"
)

var (
	configPath    = flag.String("config", "cmd/config.json", "Path to analyzer configuration file")
	sourceDir     = flag.String("source", "", "Directory with benchmark results, overrides SourceDirectory")
	sweepPath     = flag.String("sweep", "", "Sweep description YAML, overrides SweepPath")
	outputPrefix  = flag.String("output", "", "Output path prefix, overrides OutputPathPrefix")
	verbosity     = flag.String("verbosity", "info", "Logging verbosity - choose from [info, debug, trace]")
	lagZ          = flag.Float64("lagZ", 0, "Device lag z-score threshold, overrides the configured one when positive")
	syncThreshold = flag.Float64("syncThreshold", 0, "Sync-wait fraction threshold, overrides the configured one when positive")
	latencyCV     = flag.Float64("latencyCV", 0, "Latency coefficient of variation threshold, overrides the configured one when positive")
)

func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.StampMilli,
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stdout)

	switch *verbosity {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetLevel(log.TraceLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	flag.Parse()
	setupLogging()

	cfg, err := config.ReadConfigurationFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if *sourceDir != "" {
		cfg.SourceDirectory = *sourceDir
	}
	if *sweepPath != "" {
		cfg.SweepPath = *sweepPath
	}
	if *outputPrefix != "" {
		cfg.OutputPathPrefix = *outputPrefix
	}

	runAnalysis(&cfg)
}

func runAnalysis(cfg *config.AnalyzerConfiguration) {
	store, err := record.LoadDirectory(cfg.SourceDirectory)
	if err != nil {
		log.Fatalf("Cannot read benchmark results from %s: %v", cfg.SourceDirectory, err)
	}

	var sweep *config.SweepConfiguration
	if err := common.CheckPath(cfg.SweepPath); err != nil {
		log.Warnf("Ignoring sweep description: %v", err)
		cfg.SweepPath = ""
	}
	if cfg.SweepPath != "" {
		parsed, err := config.ReadSweepFile(cfg.SweepPath)
		if err != nil {
			log.Fatalf("Invalid sweep description %s: %v", cfg.SweepPath, err)
		}
		sweep = &parsed
	}

	thresholds, err := resolveThresholds(cfg, sweep, config.Thresholds{
		DeviceLagZScore:    *lagZ,
		SyncWaitFraction:   *syncThreshold,
		LatencyCVThreshold: *latencyCV,
	})
	if err != nil {
		log.Fatal(err)
	}

	pass := report.NewPass(thresholds, nil)
	experimentReport := pass.Run(cfg.ExperimentName, store, sweep)

	exporter := metric.NewExporter(cfg.OutputPathPrefix)
	written, err := exporter.FinishAndSave(experimentReport, store.Records())
	if err != nil {
		log.Fatal(err)
	}
	for _, path := range written {
		log.Infof("Wrote %s", path)
	}

	if cfg.EnablePlot && len(experimentReport.ScalingPoints) > 0 {
		if err := metric.PlotScaling(exporter.Path(common.ScalingPlotFile), experimentReport); err != nil {
			log.Errorf("Failed to plot scaling curves: %v", err)
		}
	}

	if cfg.MetricsTextfile != "" {
		if err := metric.NewScaleRegistry().WriteTextfile(cfg.MetricsTextfile, experimentReport); err != nil {
			log.Errorf("Failed to write Prometheus textfile: %v", err)
		}
	}

	printSummary(experimentReport)
}

// resolveThresholds layers the detector thresholds: flags over the sweep's analysis block
// over the JSON configuration over the defaults.
func resolveThresholds(cfg *config.AnalyzerConfiguration, sweep *config.SweepConfiguration,
	flags config.Thresholds) (config.Thresholds, error) {

	thresholds := cfg.Thresholds()
	if sweep != nil {
		thresholds = thresholds.Merge(sweep.Analysis)
	}
	thresholds = thresholds.Merge(flags)

	return thresholds, thresholds.Validate()
}

func printSummary(r common.ExperimentReport) {
	for _, p := range r.ScalingPoints {
		log.Infof("%s/%d @ %d GPUs: %.1f of %.1f ideal, efficiency %.1f%%",
			p.Model, p.BatchSize, p.DeviceCount, p.MeasuredThroughput, p.IdealThroughput, p.Efficiency*common.PercentToFraction)
	}

	if len(r.Findings) == 0 {
		log.Info("No bottlenecks found")
	} else {
		log.Infof("Found %d bottleneck(s)", len(r.Findings))
		for _, f := range r.Findings {
			log.Infof("[%s] %s", f.Category, f.Description)
			if f.Suggestion != "" {
				log.Infof("\tSuggestion: %s", f.Suggestion)
			}
		}
	}

	for _, w := range r.Warnings {
		log.Warnf("%s %s: %s", w.Kind, w.Source, w.Message)
	}
}
