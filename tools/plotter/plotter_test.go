package main

import (
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhive-serverless/torchscale/pkg/common"
)

func TestPlotter(t *testing.T) {
	log.SetLevel(log.DebugLevel)

	reports := parseFiles("./test-data")

	log.Debugf("Obtained %d reports.", len(reports))
	require.Len(t, reports, 1)
	require.Contains(t, reports, "ddp_scaling_study")
	assert.Len(t, reports["ddp_scaling_study"].ScalingPoints, 3)

	outputDir := t.TempDir()
	require.NoError(t, plotFigs(outputDir, reports))
	assert.FileExists(t, filepath.Join(outputDir, "ddp_scaling_study_"+common.ScalingPlotFile))
}
