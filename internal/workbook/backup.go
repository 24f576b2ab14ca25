package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"trading-journal/internal/journal"
)

// CheckWritable probes the workbook's directory for write permission.
// Tasks call this before any mutation so a permission problem aborts the
// run up front.
func (w *Workbook) CheckWritable() error {
	dir := filepath.Dir(w.path)
	probe, err := os.CreateTemp(dir, ".writecheck-*")
	if err != nil {
		return fmt.Errorf("directory %s: %w", dir, journal.ErrConfig)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}

// EnsureClosed verifies no other process holds the workbook open for
// writing. Best effort: it re-opens the file for exclusive-enough access
// and treats a denial as the busy condition.
func (w *Workbook) EnsureClosed() error {
	f, err := os.OpenFile(w.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("workbook %s: %w", w.path, journal.ErrBusy)
	}
	f.Close()
	return nil
}

// CreateBackup copies the workbook next to itself under a timestamped
// name and prunes older backups of the same file. Backups are advisory:
// a failure mid-task leaves the workbook partially rewritten and the
// latest backup is the recovery path.
func (w *Workbook) CreateBackup() (string, error) {
	dir, file := filepath.Split(w.path)
	base := strings.TrimSuffix(file, filepath.Ext(file))
	stamp := time.Now().Format("2006-01-02_15-04-05")
	backup := filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", base, stamp))

	if err := copyFile(w.path, backup); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	pattern := filepath.Join(dir, base+"_*.xlsx")
	matches, err := filepath.Glob(pattern)
	if err == nil {
		for _, old := range matches {
			if old == backup {
				continue
			}
			if err := os.Remove(old); err != nil {
				w.log.Warn("Failed to delete previous backup",
					zap.String("backup", old), zap.Error(err))
				continue
			}
			w.log.Info("Deleted previous backup", zap.String("backup", old))
		}
	}

	w.log.Info("Backup created", zap.String("backup", backup))
	return backup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
