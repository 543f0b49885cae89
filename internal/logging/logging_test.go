package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confshelf/internal/logging"
)

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "warn")
	require.NoError(t, err)

	log.Info("quiet please")
	log.Warn("salt rotated", "path", "/tmp/master.salt")

	out := buf.String()
	assert.NotContains(t, out, "quiet please")
	assert.Contains(t, out, "salt rotated")
	assert.Contains(t, out, "/tmp/master.salt")
}

func TestNew_DefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := logging.New(&bytes.Buffer{}, "chatty")
	require.Error(t, err)
}
