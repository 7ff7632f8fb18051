package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func useTempLog(t *testing.T) string {
	t.Helper()
	ResetLogger()
	path := filepath.Join(t.TempDir(), "datagen.log")
	SetLogPath(path)
	t.Cleanup(ResetLogger)
	return path
}

func TestInitLogger(t *testing.T) {
	path := useTempLog(t)

	InitLogger()
	require.NotNil(t, log)

	log.Info("Test log message")
	_, err := os.Stat(path)
	assert.NoError(t, err, "log file was not created")
}

func TestGetLogger(t *testing.T) {
	path := useTempLog(t)

	l := GetLogger()
	require.NotNil(t, l)
	assert.Same(t, l, GetLogger())

	l.Info("Logger retrieved successfully", zap.Int("rows", 10))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Logger retrieved successfully")
	assert.Contains(t, string(data), `"rows":10`)
}

func TestSetLevel(t *testing.T) {
	path := useTempLog(t)
	t.Cleanup(func() { SetLevel(zapcore.InfoLevel) })

	SetLevel(zapcore.WarnLevel)
	GetLogger().Info("hidden message")
	GetLogger().Warn("visible message")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden message")
	assert.Contains(t, string(data), "visible message")
}

func TestResetLogger(t *testing.T) {
	first := useTempLog(t)
	GetLogger().Info("first")

	ResetLogger()
	second := filepath.Join(t.TempDir(), "other.log")
	SetLogPath(second)
	GetLogger().Info("second")
	Sync()

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(a), "first")
	assert.NotContains(t, string(a), "second")
	assert.Contains(t, string(b), "second")
}
