package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekeeper/pkg/logger"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default at info level", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))

		log.Debug("hidden")
		assert.Zero(t, buf.Len())

		log.Info("rate limit exceeded", logger.Tier("api"))
		entry := decodeEntry(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "rate limit exceeded", entry["msg"])
		assert.Equal(t, "api", entry["tier"])
	})

	t.Run("last format option wins", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		logger.New(logger.WithOutput(buf), logger.WithJSONFormatter(), logger.WithTextFormatter()).
			Info("queued", logger.QueueSize(3))
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "queue_size=3")

		buf.Reset()
		logger.New(logger.WithOutput(buf), logger.WithTextFormatter(), logger.WithJSONFormatter()).
			Info("queued")
		assert.Equal(t, "queued", decodeEntry(t, buf)["msg"])
	})

	t.Run("static attributes", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("region", "eu"))).Info("msg")
		assert.Equal(t, "eu", decodeEntry(t, buf)["region"])
	})

	t.Run("context values", func(t *testing.T) {
		t.Parallel()
		type key string
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextValue("identity", key("identity")),
		)

		ctx := context.WithValue(context.Background(), key("identity"), "ip:203.0.113.7")
		log.InfoContext(ctx, "blocked")
		assert.Equal(t, "ip:203.0.113.7", decodeEntry(t, buf)["identity"])
	})
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decodeEntry(t, buf)["msg"])
}

func TestWithFormatPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
