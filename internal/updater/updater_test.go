package updater

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hoistd/hoist/internal/installer"
	"github.com/hoistd/hoist/internal/registry"
)

type fakeSource struct {
	release registry.Release
	err     error
}

func (f *fakeSource) SelectRelease(context.Context, registry.Channel) (registry.Release, error) {
	return f.release, f.err
}

type fakeProber struct {
	version string
}

func (f *fakeProber) CurrentVersion(context.Context, string, string) string {
	return f.version
}

type fakeInstaller struct {
	called bool
	asset  registry.Asset
	err    error
}

func (f *fakeInstaller) Install(_ context.Context, _ installer.Target, asset registry.Asset) error {
	f.called = true
	f.asset = asset
	return f.err
}

func testRelease() registry.Release {
	return registry.Release{
		TagName:    "v4.45.2",
		Prerelease: false,
		Assets: []registry.Asset{
			{Name: "app-linux-x64.tar.gz", BrowserDownloadURL: "https://dl.example.com/1"},
			{Name: "app-win-x64.zip", BrowserDownloadURL: "https://dl.example.com/2"},
		},
	}
}

func newTestUpdater(input string, source ReleaseSource, inst Installer) (*Updater, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Updater{
		Releases:    source,
		Prober:      &fakeProber{version: "4.44.0"},
		Installer:   inst,
		StatusURL:   "http://localhost:5000/api/v1/status",
		APIKey:      "secret",
		Channel:     registry.ChannelStable,
		Target:      installer.Target{InstallDir: "/opt/app", BackupDir: "/opt/app-backup", ServiceName: "app"},
		AssetSuffix: "win-x64.zip",
		In:          strings.NewReader(input),
		Out:         out,
	}, out
}

func TestRun_ConfirmedUpdateInstallsMatchingAsset(t *testing.T) {
	inst := &fakeInstaller{}
	u, out := newTestUpdater("y\n", &fakeSource{release: testRelease()}, inst)

	status, err := u.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)

	require.True(t, inst.called)
	require.Equal(t, "app-win-x64.zip", inst.asset.Name)
	require.Contains(t, out.String(), "v4.45.2")
	require.Contains(t, out.String(), "Updated to v4.45.2.")
}

func TestRun_DeclineIsCleanAbort(t *testing.T) {
	for _, input := range []string{"n\n", "N\n", "Y\n", "yes\n", "\n", ""} {
		inst := &fakeInstaller{}
		u, out := newTestUpdater(input, &fakeSource{release: testRelease()}, inst)

		status, err := u.Run(context.Background())
		require.NoError(t, err, "input %q", input)
		require.Equal(t, StatusAborted, status, "input %q", input)
		require.False(t, inst.called, "input %q", input)
		require.Contains(t, out.String(), "nothing was changed")
	}
}

func TestRun_CustomAffirmativePredicate(t *testing.T) {
	inst := &fakeInstaller{}
	u, _ := newTestUpdater("yes\n", &fakeSource{release: testRelease()}, inst)
	u.Affirmative = func(input string) bool {
		return strings.EqualFold(input, "y") || strings.EqualFold(input, "yes")
	}

	status, err := u.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.True(t, inst.called)
}

func TestRun_NoReleaseFails(t *testing.T) {
	inst := &fakeInstaller{}
	u, _ := newTestUpdater("y\n", &fakeSource{err: registry.ErrReleaseNotFound}, inst)

	status, err := u.Run(context.Background())
	require.ErrorIs(t, err, registry.ErrReleaseNotFound)
	require.Equal(t, StatusFailed, status)
	require.False(t, inst.called)
}

func TestRun_NoMatchingAssetFails(t *testing.T) {
	release := testRelease()
	release.Assets = release.Assets[:1] // linux bundle only

	inst := &fakeInstaller{}
	u, _ := newTestUpdater("y\n", &fakeSource{release: release}, inst)

	status, err := u.Run(context.Background())
	require.ErrorIs(t, err, registry.ErrAssetNotFound)
	require.Equal(t, StatusFailed, status)
	require.False(t, inst.called)
}

func TestRun_InstallerFailurePropagates(t *testing.T) {
	stepErr := &installer.StepError{Step: installer.StepExtract, BackupDir: "/opt/app-backup", Err: errors.New("boom")}
	inst := &fakeInstaller{err: stepErr}
	u, _ := newTestUpdater("y\n", &fakeSource{release: testRelease()}, inst)

	status, err := u.Run(context.Background())
	require.Equal(t, StatusFailed, status)

	var got *installer.StepError
	require.ErrorAs(t, err, &got)
	require.Equal(t, installer.StepExtract, got.Step)
}

func TestRun_ProberFailureDoesNotBlock(t *testing.T) {
	inst := &fakeInstaller{}
	u, out := newTestUpdater("y\n", &fakeSource{release: testRelease()}, inst)
	u.Prober = nil

	status, err := u.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Contains(t, out.String(), "Unknown")
}

// End-to-end against a registry double: the sample release list resolves
// per channel and the prompt decides the outcome.
func TestRun_EndToEndWithRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"tag_name": "v4.46.0-beta", "prerelease": true,
			 "assets": [{"name": "app-win-x64.zip", "browser_download_url": "https://dl.example.com/beta.zip"}]},
			{"tag_name": "v4.45.2", "prerelease": false,
			 "assets": [{"name": "app-win-x64.zip", "browser_download_url": "https://dl.example.com/stable.zip"}]}
		]`))
	}))
	defer server.Close()

	client := registry.NewClient("example/app")
	client.BaseURL = server.URL

	for _, tc := range []struct {
		channel registry.Channel
		wantTag string
	}{
		{registry.ChannelStable, "v4.45.2"},
		{registry.ChannelPrerelease, "v4.46.0-beta"},
	} {
		inst := &fakeInstaller{}
		u, out := newTestUpdater("y\n", client, inst)
		u.Channel = tc.channel

		status, err := u.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, status)
		require.Contains(t, out.String(), tc.wantTag)
	}
}
