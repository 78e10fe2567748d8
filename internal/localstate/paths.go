package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

// StateDirEnv overrides the state directory.
const StateDirEnv = "MOODLY_STATE_DIR"

const (
	defaultDir = ".moodly"
	dbFile     = "state.db"
	dirPerm    = 0o700
)

// DataDir resolves the state directory, $MOODLY_STATE_DIR or ~/.moodly, and
// makes sure it exists.
func DataDir() (string, error) {
	dir := os.Getenv(StateDirEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve state dir: %w", err)
		}
		dir = filepath.Join(home, defaultDir)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return dir, nil
}

// DBPath is DataDir joined with the database file name.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFile), nil
}

// OpenDir opens the state database inside dir, creating dir when needed.
func OpenDir(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return Open(filepath.Join(dir, dbFile))
}
