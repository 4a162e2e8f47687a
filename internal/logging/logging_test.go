package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSplitsByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger, err := NewWithWriters("info", &out, &errOut)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("result", zap.Int64("modified", 1))
	logger.Error("failed")
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "result", entry["msg"])
	assert.EqualValues(t, 1, entry["modified"])

	assert.NotContains(t, out.String(), "failed")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, errOut.String(), "failed")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := NewWithWriters("loud", &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
