// Package version reports whether a newer dfspanel release is published.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ReleasesURL is the GitHub endpoint for the latest dfspanel release
const ReleasesURL = "https://api.github.com/repos/studiowebux/dfspanel/releases/latest"

const checkTimeout = 5 * time.Second

// Release is the part of a GitHub release the checker reads
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Version returns the tag without its leading "v"
func (r Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// Checker queries a releases endpoint
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a Checker for the dfspanel releases page
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Check fetches the latest release and reports whether it is newer than current
func (c *Checker) Check(ctx context.Context, current string) (Release, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Release{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "dfspanel/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Release{}, false, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Release{}, false, fmt.Errorf("failed to decode release: %w", err)
	}

	latest := release.Version()
	if latest == "" {
		return release, false, nil
	}
	return release, isNewerVersion(latest, strings.TrimPrefix(current, "v")), nil
}

// isNewerVersion compares dotted numeric versions. Pre-release and build
// suffixes are ignored, missing parts count as zero.
func isNewerVersion(latest, current string) bool {
	a, b := parseVersion(latest), parseVersion(current)
	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			return x > y
		}
	}
	return false
}

func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	var parts []int
	for _, part := range strings.Split(version, ".") {
		if n, err := strconv.Atoi(part); err == nil {
			parts = append(parts, n)
		}
	}
	return parts
}
