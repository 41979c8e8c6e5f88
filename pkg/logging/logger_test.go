package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput records written entries for assertions.
type captureOutput struct {
	entries []LogEntry
}

func (c *captureOutput) Write(e LogEntry) error {
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureOutput) Sync() error  { return nil }
func (c *captureOutput) Close() error { return nil }

func TestLoggerSeverityFiltering(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{capture}})
	ctx := context.Background()

	logger.Debug(ctx, "dropped")
	logger.Info(ctx, "dropped too")
	logger.Warn(ctx, "kept")
	logger.Error(ctx, "kept as well")

	require.Len(t, capture.entries, 2)
	assert.Equal(t, WARN, capture.entries[0].Severity)
	assert.Equal(t, ERROR, capture.entries[1].Severity)
}

func TestLoggerMessageFormatting(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{capture}})

	logger.Info(context.Background(), "generation %d is full", 3)

	require.Len(t, capture.entries, 1)
	assert.Equal(t, "generation 3 is full", capture.entries[0].Message)
	assert.NotEmpty(t, capture.entries[0].File)
}

func TestLoggerDefaultFields(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{
		Severity:      DEBUG,
		Outputs:       []Output{capture},
		DefaultFields: map[string]interface{}{"study": "repro"},
	})

	logger.Info(context.Background(), "hello")

	require.Len(t, capture.entries, 1)
	assert.Equal(t, "repro", capture.entries[0].Fields["study"])
}

func TestGlobalLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	custom := NewLogger(Config{Severity: ERROR, Outputs: nil})
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())

	SetLogger(nil)
	assert.NotNil(t, GetLogger())
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.log")
	out, err := NewFileOutput(path)
	require.NoError(t, err)

	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})
	logger.Info(context.Background(), "trial %d complete", 7)
	require.NoError(t, out.Sync())
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "trial 7 complete"))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))
}
