package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextAddsCorrelationAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), "u-7")
	log.WithContext(ctx).StatusTransition("p-1", "Draft", "FdpgCheck", "Researcher")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "u-7", record["user_id"])
	assert.Equal(t, "FdpgCheck", record["to"])
}

func TestWithContextWithoutValuesReturnsSameLogger(t *testing.T) {
	log := Discard()
	assert.Same(t, log, log.WithContext(context.Background()))
}
