package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/studiowebux/dfspanel/internal/version"
)

// ReleaseChecker looks up the latest published release
type ReleaseChecker interface {
	Check(ctx context.Context, current string) (version.Release, bool, error)
}

// CheckVersion prints the running version and whether a newer one is out
func CheckVersion(ctx context.Context, checker ReleaseChecker, current string, w io.Writer) error {
	release, newer, err := checker.Check(ctx, current)
	if err != nil {
		return fmt.Errorf("version check failed: %w", err)
	}

	if !newer {
		fmt.Fprintf(w, "dfspanel %s is up to date\n", current)
		return nil
	}
	fmt.Fprintf(w, "dfspanel %s is available (running %s)\n", release.Version(), current)
	if release.HTMLURL != "" {
		fmt.Fprintln(w, release.HTMLURL)
	}
	return nil
}
