// Package updater checks the release feed for newer versions of the program.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

// DefaultFeedURL is the latest-release endpoint of the project repository
const DefaultFeedURL = "https://api.github.com/repos/mduijf/MHMOT_2025/releases/latest"

const (
	userAgent        = "MHMOT-Update-Checker"
	defaultNotes     = "No release notes available."
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// Release is the subset of the release feed the checker reads
type Release struct {
	TagName     string  `json:"tag_name"`
	Name        string  `json:"name"`
	HTMLURL     string  `json:"html_url"`
	PublishedAt string  `json:"published_at"`
	Body        *string `json:"body"`
}

// UpdateInfo is the result of a check
type UpdateInfo struct {
	Available      bool   `json:"available"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	DownloadURL    string `json:"download_url"`
	ReleaseNotes   string `json:"release_notes"`
}

// Checker compares the running version against the release feed
type Checker struct {
	feedURL string
	current string
	client  *http.Client
	logger  *log.Logger
}

// Option configures a Checker
type Option func(*Checker)

// WithHTTPClient replaces the default client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// WithFeedURL points the checker at a different release feed
func WithFeedURL(url string) Option {
	return func(c *Checker) {
		if url != "" {
			c.feedURL = url
		}
	}
}

// NewChecker creates a checker for the given running version
func NewChecker(currentVersion string, logger *log.Logger, opts ...Option) *Checker {
	c := &Checker{
		feedURL: DefaultFeedURL,
		current: strings.TrimPrefix(currentVersion, "v"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger.WithPrefix("updater"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check fetches the latest release and reports whether it is newer
func (c *Checker) Check(ctx context.Context) (UpdateInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return UpdateInfo{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return UpdateInfo{}, fmt.Errorf("failed to fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UpdateInfo{}, fmt.Errorf("release feed returned status: %s", resp.Status)
	}

	var release Release
	dec := json.NewDecoder(http.MaxBytesReader(nil, resp.Body, maxResponseBytes))
	if err := dec.Decode(&release); err != nil {
		return UpdateInfo{}, fmt.Errorf("failed to parse release data: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	info := UpdateInfo{
		Available:      IsNewer(c.current, latest),
		CurrentVersion: c.current,
		LatestVersion:  latest,
		DownloadURL:    release.HTMLURL,
		ReleaseNotes:   defaultNotes,
	}
	if release.Body != nil {
		info.ReleaseNotes = *release.Body
	}

	c.logger.Debug("Checked for updates", "current", info.CurrentVersion, "latest", info.LatestVersion, "available", info.Available)
	return info, nil
}

// IsNewer reports whether latest is a higher version than current. Both may
// carry a leading "v"; missing minor or patch parts count as zero.
func IsNewer(current, latest string) bool {
	cur, lat := canonical(current), canonical(latest)
	if !semver.IsValid(lat) {
		return false
	}
	return semver.Compare(lat, cur) > 0
}

func canonical(version string) string {
	return semver.Canonical("v" + strings.TrimPrefix(strings.TrimSpace(version), "v"))
}
