package pkg

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the parent directory of a file path if it is missing.
// It fails if the parent exists and is not a directory.
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	stat, err := os.Stat(dir)
	if err == nil {
		if !stat.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
