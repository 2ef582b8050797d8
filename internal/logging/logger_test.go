package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter(t *testing.T) {
	t.Run("JSON Renames Error Key", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewWriter(&buf, slog.LevelInfo, "json")
		logger.Info("search resolved", "error", errors.New("boom"))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "boom", line["err"])
		assert.NotContains(t, line, "error")
	})

	t.Run("Text Filters By Level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewWriter(&buf, slog.LevelWarn, "text")
		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
	})
}

func TestParseLevel(t *testing.T) {
	l, err := logging.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	_, err = logging.ParseLevel("loud")
	assert.Error(t, err)
}
