package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrLocked = errors.New("lock file already exists")

// FileLock is a fail-fast advisory guard: the marker file's presence
// means a run is in progress for this script identity. It is never
// removed on success, so the recorded campaign id stays available for
// operator inspection until manual cleanup.
type FileLock struct {
	path string
}

func New(dir string, name string) *FileLock {
	return &FileLock{path: filepath.Join(dir, name+".lock")}
}

func (l *FileLock) Path() string {
	return l.path
}

func (l *FileLock) Acquire(runID string) error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrLocked
		}
		return fmt.Errorf("create lock file %s: %w", l.path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "run %s in progress\n", runID); err != nil {
		return fmt.Errorf("write lock file %s: %w", l.path, err)
	}
	return nil
}

// RecordCampaign appends the campaign id for operator reference. The
// content is human-readable, not machine-parsed.
func (l *FileLock) RecordCampaign(campaignID int64) error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file %s: %w", l.path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "CAMPAIGNID=%d\n", campaignID); err != nil {
		return fmt.Errorf("write lock file %s: %w", l.path, err)
	}
	return nil
}
