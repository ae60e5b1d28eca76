package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()

	logFile := filepath.Join(root, "logs", "nested", "service.log")
	require.NoError(t, EnsureParentDir(logFile))
	stat, err := os.Stat(filepath.Dir(logFile))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	// idempotent
	require.NoError(t, EnsureParentDir(logFile))

	plainFile := filepath.Join(root, "plain")
	require.NoError(t, os.WriteFile(plainFile, []byte("x"), 0o600))
	err = EnsureParentDir(filepath.Join(plainFile, "service.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}
