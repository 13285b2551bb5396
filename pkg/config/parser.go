package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vhive-serverless/torchscale/pkg/common"
	"gopkg.in/yaml.v3"

	log "github.com/sirupsen/logrus"
)

const (
	defaultProfilingTool    = "nsys"
	defaultProfilingTrigger = "sync_stall_detection"
)

func ReadConfigurationFile(path string) (AnalyzerConfiguration, error) {
	var config AnalyzerConfiguration

	byteValue, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err = json.Unmarshal(byteValue, &config); err != nil {
		return config, fmt.Errorf("failed to parse analyzer configuration %s: %w", path, err)
	}

	if err = common.ValidateStruct(&config); err != nil {
		return config, fmt.Errorf("invalid analyzer configuration %s: %w", path, err)
	}

	log.Debugf("Read analyzer configuration from %s", path)
	return config, nil
}

// ReadSweepFile loads the YAML experiment description the benchmark runner was driven with.
func ReadSweepFile(path string) (SweepConfiguration, error) {
	var sweep SweepConfiguration

	byteValue, err := os.ReadFile(path)
	if err != nil {
		return sweep, err
	}

	if err = yaml.Unmarshal(byteValue, &sweep); err != nil {
		return sweep, fmt.Errorf("failed to parse sweep file %s: %w", path, err)
	}

	if sweep.ExperimentName == "" {
		sweep.ExperimentName = common.UnnamedExperiment
	}
	if sweep.Profiling.Tool == "" {
		sweep.Profiling.Tool = defaultProfilingTool
	}
	if sweep.Profiling.Trigger == "" {
		sweep.Profiling.Trigger = defaultProfilingTrigger
	}

	if err = common.ValidateStruct(&sweep); err != nil {
		return sweep, fmt.Errorf("invalid sweep file %s: %w", path, err)
	}

	log.Debugf("Sweep %s: %d models, %d batch sizes, %d gpu counts",
		sweep.ExperimentName, len(sweep.Models), len(sweep.BatchSizes), len(sweep.GPUCounts))
	return sweep, nil
}
