package present

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneReports deletes generated reports in dir last modified more than maxAge
// before now. It returns how many files were removed. A non-positive maxAge
// keeps everything; a missing dir is not an error.
func PruneReports(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 || dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, ReportPrefix) || filepath.Ext(name) != ".html" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
