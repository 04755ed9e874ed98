package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("imported file")

	output := buf.String()
	if !strings.Contains(output, "imported file") {
		t.Errorf("Expected output to contain 'imported file', got: %s", output)
	}
}

func TestDebugLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Debug().Msg("skipping line")
	if buf.Len() != 0 {
		t.Errorf("Expected debug message suppressed at default level, got: %s", buf.String())
	}

	t.Setenv(DebugEnv, "1")
	buf.Reset()
	log = NewWithWriter(buf)
	log.Debug().Msg("skipping line")
	if !strings.Contains(buf.String(), "skipping line") {
		t.Errorf("Expected debug message with %s=1, got: %s", DebugEnv, buf.String())
	}
}

func TestWithContext(t *testing.T) {
	log := New()
	ctx := WithContext(context.Background(), log)

	if ctx.Value(LoggerKey) == nil {
		t.Error("Expected logger in context, got nil")
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}
