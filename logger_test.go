package lsystree

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerSilentByDefault(t *testing.T) {
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	l := New()
	_, err := l.Grow()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "grew")

	buf.Reset()
	assert.ErrorIs(t, l.Update(), ErrStaleTopology)

	_, err = l.Build()
	require.NoError(t, err)
	_, err = l.Grow()
	require.NoError(t, err)
	assert.ErrorIs(t, l.Update(), ErrStaleTopology)
	assert.Contains(t, buf.String(), "update rejected")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
