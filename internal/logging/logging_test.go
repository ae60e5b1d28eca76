package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestFanOutWriter(t *testing.T) {
	sb1 := &strings.Builder{}
	sb2 := &strings.Builder{}
	fw := NewFanOutWriter(sb1, sb2)

	n, err := fw.Write([]byte("line one\n"))
	require.NoError(t, err)
	assert.Equal(t, len("line one\n"), n)
	assert.Equal(t, "line one\n", sb1.String())
	assert.Equal(t, "line one\n", sb2.String())
}

func TestFanOutWriter_PartialFailure(t *testing.T) {
	sb := &strings.Builder{}
	fw := NewFanOutWriter(failingWriter{}, sb)

	n, err := fw.Write([]byte("msg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 3, n)
	assert.Equal(t, "msg", sb.String())

	fw = NewFanOutWriter(failingWriter{}, failingWriter{})
	n, err = fw.Write([]byte("msg"))
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("nonsense"))
}

func TestSetup_LogFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	logFile := filepath.Join(t.TempDir(), "logs", "service")
	closer, err := Setup(LoggerSetupParams{
		LogFileName: logFile,
		LogLevel:    "debug",
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, closer.Close())
	}()

	logrus.Debugf("hello %s", "file")

	content, err := os.ReadFile(logFile + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello file")
}

func TestSetup_StdoutOnly(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	closer, err := Setup(LoggerSetupParams{LogLevel: "info", LogFormatJSON: true})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
