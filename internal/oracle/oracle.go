// Package oracle reports the version the managed application is
// currently running, by asking the application itself.
package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// VersionUnknown is reported when the running version cannot be
// determined. The probe is informational; it never blocks an update.
const VersionUnknown = "Unknown"

// Client queries the application's status endpoint.
type Client struct {
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

// CurrentVersion returns the version the running application reports on
// its status endpoint, authenticated with the API key. Transport,
// authentication and decode failures are logged and downgraded to
// VersionUnknown.
func (c *Client) CurrentVersion(ctx context.Context, statusURL, apiKey string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		log.Warnf("invalid status URL %s: %v", statusURL, err)
		return VersionUnknown
	}
	req.Header.Set("X-Api-Key", apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warnf("failed to query running version: %v", err)
		return VersionUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("status endpoint returned %d", resp.StatusCode)
		return VersionUnknown
	}

	var info struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		log.Warnf("failed to decode status response: %v", err)
		return VersionUnknown
	}

	if info.Version == "" {
		return VersionUnknown
	}
	return info.Version
}
