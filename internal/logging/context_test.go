package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFrom(ctx))
	assert.Equal(t, ctx, WithRequestID(ctx, ""))

	ctx = WithRequestID(ctx, "rid-1")
	assert.Equal(t, "rid-1", RequestIDFrom(ctx))
}

func TestCtxAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	withID := Ctx(WithRequestID(context.Background(), "rid-2"), base)
	withID.Info().Msg("with id")
	withoutID := Ctx(context.Background(), base)
	withoutID.Info().Msg("without id")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "rid-2", first["request_id"])
	assert.NotContains(t, second, "request_id")
}
