// Package installer replaces an installed application with a downloaded
// release bundle, preserving the application's stateful files.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/hoistd/hoist/internal/preserve"
	"github.com/hoistd/hoist/internal/registry"
)

// Install sequence checkpoints, in execution order.
const (
	StepStopService  = "StopService"
	StepDownload     = "Download"
	StepPreserve     = "Preserve"
	StepPurge        = "Purge"
	StepExtract      = "Extract"
	StepStartService = "StartService"
)

// Target identifies one deployable instance of the application.
type Target struct {
	InstallDir  string
	BackupDir   string
	ServiceName string
}

// StepError reports which checkpoint of the install sequence failed.
// BackupDir is populated once state preservation has run, so the
// operator knows where to recover from; there is no automatic rollback.
type StepError struct {
	Step      string
	BackupDir string
	Err       error
}

func (e *StepError) Error() string {
	if e.BackupDir != "" {
		return fmt.Sprintf("%s failed: %v (preserved state is in %s)", e.Step, e.Err, e.BackupDir)
	}
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Installer applies a release asset to an installation target.
type Installer struct {
	Service    ServiceController
	HTTPClient *http.Client

	// Preserved names the stateful files that survive the purge and are
	// copied into the backup directory beforehand.
	Preserved []string
}

func New(svc ServiceController, preserved []string) *Installer {
	return &Installer{
		Service:    svc,
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
		Preserved:  preserved,
	}
}

// Install runs the update sequence against target. The steps are strict
// checkpoints: a failure aborts the remainder, and recovery is manual
// from the backup directory.
func (i *Installer) Install(ctx context.Context, target Target, asset registry.Asset) error {
	log.Infof("stopping service %s", target.ServiceName)
	if err := i.Service.Stop(); err != nil {
		return &StepError{Step: StepStopService, Err: err}
	}

	archive, err := i.download(ctx, asset)
	if err != nil {
		return &StepError{Step: StepDownload, Err: err}
	}

	report, err := preserve.Preserve(target.InstallDir, target.BackupDir, i.Preserved)
	if err != nil {
		return &StepError{Step: StepPreserve, Err: err}
	}
	log.Infof("preserved %d file(s) in %s, %d missing from the install", len(report.Copied), target.BackupDir, len(report.Skipped))

	if err := i.purge(target.InstallDir); err != nil {
		return &StepError{Step: StepPurge, BackupDir: target.BackupDir, Err: err}
	}

	log.Infof("extracting %s into %s", filepath.Base(archive), target.InstallDir)
	if err := extract(archive, target.InstallDir); err != nil {
		return &StepError{Step: StepExtract, BackupDir: target.BackupDir, Err: err}
	}

	if err := os.Remove(archive); err != nil {
		log.Warnf("failed to remove downloaded archive %s: %v", archive, err)
	}

	log.Infof("starting service %s", target.ServiceName)
	if err := i.Service.Start(); err != nil {
		log.Errorf("service %s did not start: the new version is installed but the service is DOWN, start it manually", target.ServiceName)
		return &StepError{Step: StepStartService, BackupDir: target.BackupDir, Err: err}
	}

	return nil
}

// download fetches the asset bundle into a uniquely named file under the
// system temp directory and returns its path.
func (i *Installer) download(ctx context.Context, asset registry.Asset) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", asset.Name, err)
	}

	resp, err := i.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", asset.Name, resp.StatusCode)
	}

	// the registry controls the asset name, keep only its base
	dest := filepath.Join(os.TempDir(), fmt.Sprintf("hoist-%s-%s", uuid.New().String(), filepath.Base(asset.Name)))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("download %s: %w", asset.Name, err)
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("close %s: %w", dest, err)
	}

	return dest, nil
}

// purge removes every entry under installDir whose name is not in the
// preserved set. Preserved files stay in place untouched; they have
// already been copied into the backup directory as a safety net.
func (i *Installer) purge(installDir string) error {
	entries, err := os.ReadDir(installDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// fresh install, nothing to purge
			return os.MkdirAll(installDir, 0755)
		}
		return fmt.Errorf("read install dir %s: %w", installDir, err)
	}

	for _, entry := range entries {
		if i.isPreserved(entry.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(installDir, entry.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func (i *Installer) isPreserved(name string) bool {
	for _, preserved := range i.Preserved {
		if name == preserved {
			return true
		}
	}
	return false
}
