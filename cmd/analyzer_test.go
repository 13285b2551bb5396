package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhive-serverless/torchscale/pkg/config"
)

func TestResolveThresholds(t *testing.T) {
	cfg := &config.AnalyzerConfiguration{DeviceLagZScore: 1.8, SyncWaitThreshold: 0.2}
	sweep := &config.SweepConfiguration{Analysis: config.Thresholds{SyncWaitFraction: 0.3, LatencyCVThreshold: 0.25}}

	thresholds, err := resolveThresholds(cfg, nil, config.Thresholds{})
	require.NoError(t, err)
	assert.Equal(t, config.Thresholds{DeviceLagZScore: 1.8, SyncWaitFraction: 0.2, LatencyCVThreshold: 0.15}, thresholds)

	thresholds, err = resolveThresholds(cfg, sweep, config.Thresholds{})
	require.NoError(t, err)
	assert.Equal(t, config.Thresholds{DeviceLagZScore: 1.8, SyncWaitFraction: 0.3, LatencyCVThreshold: 0.25}, thresholds)

	thresholds, err = resolveThresholds(cfg, sweep, config.Thresholds{DeviceLagZScore: 2, LatencyCVThreshold: 0.4})
	require.NoError(t, err)
	assert.Equal(t, config.Thresholds{DeviceLagZScore: 2, SyncWaitFraction: 0.3, LatencyCVThreshold: 0.4}, thresholds)

	_, err = resolveThresholds(cfg, nil, config.Thresholds{SyncWaitFraction: 1.5})
	assert.Error(t, err)
}
