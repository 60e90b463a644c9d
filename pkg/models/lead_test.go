package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidLeadStage(t *testing.T) {
	for _, stage := range AllStages {
		assert.True(t, ValidLeadStage(stage), "%s", stage)
	}
	assert.False(t, ValidLeadStage("ARCHIVED"))
	assert.False(t, ValidLeadStage(""))
	assert.False(t, ValidLeadStage("new"), "stages are case sensitive")
}

func TestAllStages_BoardOrder(t *testing.T) {
	assert.Equal(t, []LeadStage{
		StageNew, StageContacted, StageViewed, StageNegotiating, StageClosed,
	}, AllStages)
}

func TestJSONBMap_ValueAndScan(t *testing.T) {
	m := JSONBMap{"bedrooms": float64(3), "area": "downtown"}

	value, err := m.Value()
	require.NoError(t, err)

	var scanned JSONBMap
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, m, scanned)
}

func TestJSONBMap_ScanNil(t *testing.T) {
	var m JSONBMap
	require.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestJSONBMap_NilValue(t *testing.T) {
	var m JSONBMap
	value, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), value)
}
