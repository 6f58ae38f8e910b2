// Package updater orchestrates the end-to-end update flow: probe the
// running version, select a release, gate on operator confirmation and
// delegate to the installer.
package updater

import (
	"bufio"
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/hoistd/hoist/internal/installer"
	"github.com/hoistd/hoist/internal/oracle"
	"github.com/hoistd/hoist/internal/registry"
	"github.com/hoistd/hoist/version"
)

// ReleaseSource selects what to install.
type ReleaseSource interface {
	SelectRelease(ctx context.Context, channel registry.Channel) (registry.Release, error)
}

// VersionProber reports the running application version, best effort.
type VersionProber interface {
	CurrentVersion(ctx context.Context, statusURL, apiKey string) string
}

// Installer applies a selected asset to the installation target.
type Installer interface {
	Install(ctx context.Context, target installer.Target, asset registry.Asset) error
}

// Status is the overall outcome of one update run.
type Status int

const (
	StatusSuccess Status = iota
	StatusAborted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAborted:
		return "aborted by user"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// DefaultAffirmative accepts exactly the lowercase letter "y". Anything
// else, including "Y" and "yes", declines.
func DefaultAffirmative(input string) bool {
	return input == "y"
}

// Updater composes the update flow. The zero value is not usable; all
// collaborator fields must be set.
type Updater struct {
	Releases  ReleaseSource
	Prober    VersionProber
	Installer Installer

	StatusURL   string
	APIKey      string
	Channel     registry.Channel
	Target      installer.Target
	AssetSuffix string

	In  io.Reader
	Out io.Writer

	// Affirmative decides whether a prompt answer approves the update.
	// Nil falls back to DefaultAffirmative.
	Affirmative func(string) bool
}

// Run executes one update. Confirmation happens before the service is
// touched: a decline leaves the system entirely unmodified.
func (u *Updater) Run(ctx context.Context) (Status, error) {
	current := oracle.VersionUnknown
	if u.Prober != nil && u.StatusURL != "" {
		current = u.Prober.CurrentVersion(ctx, u.StatusURL, u.APIKey)
	}

	release, err := u.Releases.SelectRelease(ctx, u.Channel)
	if err != nil {
		return StatusFailed, err
	}

	fmt.Fprintf(u.Out, "Running version:   %s\n", current)
	fmt.Fprintf(u.Out, "Selected release:  %s (%s channel)%s\n", release.TagName, u.Channel, relationNote(current, release.TagName))
	fmt.Fprint(u.Out, "Install this release? [y/N]: ")

	if !u.confirm() {
		fmt.Fprintln(u.Out, "Update aborted, nothing was changed.")
		return StatusAborted, nil
	}

	asset, err := registry.SelectAsset(release, u.AssetSuffix)
	if err != nil {
		return StatusFailed, err
	}

	log.Infof("installing %s (%s) into %s", release.TagName, asset.Name, u.Target.InstallDir)
	if err := u.Installer.Install(ctx, u.Target, asset); err != nil {
		return StatusFailed, err
	}

	fmt.Fprintf(u.Out, "Updated to %s.\n", release.TagName)
	return StatusSuccess, nil
}

func (u *Updater) confirm() bool {
	affirmative := u.Affirmative
	if affirmative == nil {
		affirmative = DefaultAffirmative
	}

	scanner := bufio.NewScanner(u.In)
	if !scanner.Scan() {
		return false
	}
	return affirmative(scanner.Text())
}

func relationNote(current, candidate string) string {
	switch version.Compare(current, candidate) {
	case version.RelationNewer:
		return ", newer than the running version"
	case version.RelationSame:
		return ", same as the running version"
	case version.RelationOlder:
		return ", OLDER than the running version"
	}
	return ""
}
