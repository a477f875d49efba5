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

type tenantKey struct{}

func tenantExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(tenantKey{}).(string)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.String("tenant", v), true
}

func TestContextHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := logger.NewContextHandler(slog.NewJSONHandler(&buf, nil), nil, tenantExtractor)
	log := slog.New(h).With(slog.String("static", "yes")).WithGroup("g")

	ctx := context.WithValue(context.Background(), tenantKey{}, "acme")
	log.InfoContext(ctx, "with tenant")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "yes", rec["static"])
	group, ok := rec["g"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "acme", group["tenant"])

	buf.Reset()
	log.InfoContext(context.Background(), "without tenant")
	assert.NotContains(t, buf.String(), "tenant")

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}
