// Package preserve copies the application's stateful files aside before
// the install directory is rewritten.
package preserve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/hoistd/hoist/util"
)

// Report enumerates what happened to each file in the preserved set.
type Report struct {
	Copied  []string
	Skipped []string
}

// Preserve copies each named file from installDir into backupDir,
// overwriting any prior backup of the same name. A file missing from
// installDir is recorded as a skip, not an error: a fresh install may
// not have produced all state files yet.
func Preserve(installDir, backupDir string, files []string) (Report, error) {
	var report Report

	if err := os.MkdirAll(backupDir, 0750); err != nil {
		return report, fmt.Errorf("create backup dir %s: %w", backupDir, err)
	}

	for _, name := range files {
		src := filepath.Join(installDir, name)

		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debugf("no %s in %s, skipping", name, installDir)
				report.Skipped = append(report.Skipped, name)
				continue
			}
			return report, fmt.Errorf("stat %s: %w", src, err)
		}

		if err := util.CopyFile(src, filepath.Join(backupDir, name)); err != nil {
			return report, fmt.Errorf("back up %s: %w", name, err)
		}
		report.Copied = append(report.Copied, name)
	}

	return report, nil
}
