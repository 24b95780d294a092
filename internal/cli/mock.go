package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/studiowebux/dfspanel/internal/mock"
)

// MockOptions configures RunMock
type MockOptions struct {
	FixturePath string // Empty uses the built-in fixture
	Host        string
	Port        int
	Init        string // Write the built-in fixture to this path and exit
	Logger      *slog.Logger
}

// RunMock serves a stand-in generation service until ctx is done
func RunMock(ctx context.Context, opts MockOptions, w io.Writer) error {
	if opts.Init != "" {
		if err := mock.SaveFixture(mock.DefaultFixture(), opts.Init); err != nil {
			return err
		}
		fmt.Fprintf(w, "Fixture written to %s\n", opts.Init)
		return nil
	}

	fixture := mock.DefaultFixture()
	workdir, _ := os.Getwd()
	if opts.FixturePath != "" {
		loaded, err := mock.LoadFixture(opts.FixturePath)
		if err != nil {
			return err
		}
		fixture = loaded
		workdir = filepath.Dir(opts.FixturePath)
	}
	if opts.Host != "" {
		fixture.Host = opts.Host
	}
	if opts.Port != 0 {
		fixture.Port = opts.Port
	}

	server := mock.NewServer(fixture, workdir, opts.Logger)
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Mock service listening on %s (%d tables)\n", server.GetAddress(), len(fixture.Tables))
	fmt.Fprintln(w, "Press Ctrl+C to stop")

	<-ctx.Done()
	return server.Stop()
}
