package job

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/ogzhanolguncu/word-count-in-go/map_reduce"
)

const (
	ReportFile = "part-00000"
	MarkerFile = "_SUCCESS"

	markerMessage = "Job completed successfully.\n"
)

// WriteOutput creates dir if needed and commits the report, then the marker.
// The marker is only written once the report is complete and closed.
func WriteOutput(dir string, report map_reduce.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := clearMarker(dir); err != nil {
		return err
	}
	if err := commitFile(dir, ReportFile, report.WriteTo); err != nil {
		return err
	}
	return commitFile(dir, MarkerFile, func(w io.Writer) (int64, error) {
		n, err := io.WriteString(w, markerMessage)
		return int64(n), err
	})
}

// clearMarker removes a marker left by an earlier run. A dir that does not
// exist, or is not a directory, holds no marker.
func clearMarker(dir string) error {
	err := os.Remove(filepath.Join(dir, MarkerFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
		return fmt.Errorf("remove stale marker: %w", err)
	}
	return nil
}

// commitFile writes a uniquely named staging file next to name and renames
// it into place once it is synced and closed.
func commitFile(dir, name string, write func(io.Writer) (int64, error)) error {
	staging := filepath.Join(dir, "."+name+"-"+uuid.NewString())
	f, err := os.OpenFile(staging, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}

	if _, err := write(f); err != nil {
		f.Close()
		os.Remove(staging)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(staging)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(staging)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(staging, filepath.Join(dir, name)); err != nil {
		os.Remove(staging)
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}
