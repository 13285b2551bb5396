package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceAtof(t *testing.T) {
	values, err := SliceAtof(" 100; 102.5 ;98", DeviceTimingsSeparator)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 102.5, 98}, values)

	values, err = SliceAtof("  ", DeviceTimingsSeparator)
	require.NoError(t, err)
	assert.Nil(t, values)

	_, err = SliceAtof("1;x", DeviceTimingsSeparator)
	assert.Error(t, err)
}

func TestJoinFloats(t *testing.T) {
	assert.Equal(t, "20.5;21;0.1", JoinFloats([]float64{20.5, 21, 0.1}, DeviceTimingsSeparator))
	assert.Equal(t, "", JoinFloats(nil, DeviceTimingsSeparator))
}

func TestMaxOf(t *testing.T) {
	assert.Equal(t, 8, MaxOf(1, 8, 4))
	assert.Equal(t, -1, MaxOf(-3, -1))
	assert.Equal(t, 0, MaxOf())
}

func TestIsReportArtifact(t *testing.T) {
	assert.True(t, IsReportArtifact("ddp_"+RecordsCSVFile))
	assert.True(t, IsReportArtifact("ddp_scaling_study_"+WarningsCSVFile))
	assert.True(t, IsReportArtifact("ddp_"+ReportJSONFile))
	assert.False(t, IsReportArtifact(RecordsCSVFile))
	assert.False(t, IsReportArtifact("bert_results.csv"))
}
