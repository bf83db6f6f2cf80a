package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := ForService(NewWithWriter(&buf, "nonsense"), "rythu", "test")

	logger.Debug("hidden")
	require.Zero(t, buf.Len())

	logger.Info("visible", "user_id", "u-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "visible", record["msg"])
	require.Equal(t, "rythu", record["service"])
	require.Equal(t, "test", record["env"])
	require.Equal(t, "u-1", record["user_id"])
}
