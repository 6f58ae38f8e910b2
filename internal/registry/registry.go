package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the GitHub-compatible API root the release listing
// is fetched from.
const DefaultBaseURL = "https://api.github.com"

// maxResponseSize bounds how much of the registry response is read.
const maxResponseSize = 4 << 20

var (
	// ErrReleaseNotFound is returned when no published release matches
	// the requested channel.
	ErrReleaseNotFound = errors.New("no matching release found")

	// ErrAssetNotFound is returned when a release has no asset for the
	// platform bundle suffix.
	ErrAssetNotFound = errors.New("no matching release asset found")
)

// Channel selects which release track to follow.
type Channel string

const (
	ChannelStable     Channel = "stable"
	ChannelPrerelease Channel = "prerelease"
)

// ParseChannel maps the operator-facing channel name onto a Channel.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(s)) {
	case ChannelStable:
		return ChannelStable, nil
	case ChannelPrerelease:
		return ChannelPrerelease, nil
	}
	return "", fmt.Errorf("unknown release channel %q, expected %s or %s", s, ChannelStable, ChannelPrerelease)
}

// Asset is one downloadable artifact attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is one published version record, immutable once fetched.
type Release struct {
	TagName    string  `json:"tag_name"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// Client fetches release metadata for a single repository.
type Client struct {
	BaseURL    string
	Repo       string
	HTTPClient *http.Client
}

// NewClient returns a release client for the given owner/name repository
// identifier.
func NewClient(repo string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Repo:       repo,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListReleases fetches the repository's releases, newest first as the
// registry returns them. The call is read-only, so transient transport
// failures are retried with a short exponential backoff.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases", strings.TrimSuffix(c.BaseURL, "/"), c.Repo)

	var releases []Release
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("list releases for %s: status %d", c.Repo, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return err
		}

		if err := json.Unmarshal(body, &releases); err != nil {
			return backoff.Permanent(fmt.Errorf("decode releases: %w", err))
		}
		return nil
	}

	err := backoff.RetryNotify(fetch, listBackOff(ctx), func(err error, duration time.Duration) {
		log.Warnf("retrying release listing in %v due to error %v", duration, err)
	})
	if err != nil {
		return nil, err
	}

	return releases, nil
}

func listBackOff(ctx context.Context) backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     time.Second,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         5 * time.Second,
		MaxElapsedTime:      15 * time.Second,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	return backoff.WithContext(b, ctx)
}

// SelectRelease returns the newest release on the given channel. The
// registry's newest-first ordering is trusted as-is.
func (c *Client) SelectRelease(ctx context.Context, channel Channel) (Release, error) {
	if channel != ChannelStable && channel != ChannelPrerelease {
		return Release{}, fmt.Errorf("%w: invalid channel %q", ErrReleaseNotFound, channel)
	}

	releases, err := c.ListReleases(ctx)
	if err != nil {
		return Release{}, err
	}

	wantPrerelease := channel == ChannelPrerelease
	for _, release := range releases {
		if release.Prerelease == wantPrerelease {
			return release, nil
		}
	}

	return Release{}, fmt.Errorf("%w: no %s release published for %s", ErrReleaseNotFound, channel, c.Repo)
}

// SelectAsset returns the first asset, in registry order, whose name
// ends with suffix.
func SelectAsset(release Release, suffix string) (Asset, error) {
	for _, asset := range release.Assets {
		if strings.HasSuffix(asset.Name, suffix) {
			return asset, nil
		}
	}
	return Asset{}, fmt.Errorf("%w: release %s has no asset ending in %q", ErrAssetNotFound, release.TagName, suffix)
}

// DefaultSuffix returns the bundle suffix published for this platform.
func DefaultSuffix() string {
	switch runtime.GOOS {
	case "windows":
		return "win-x64.zip"
	case "darwin":
		return "osx-x64.tar.gz"
	default:
		return "linux-x64.tar.gz"
	}
}
