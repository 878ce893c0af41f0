package mounts

import (
	"context"
	"fmt"
	"io"

	"github.com/chainguard-dev/clog"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
)

// Checker verifies that mount points exist before launch
type Checker struct {
	Fs afero.Fs

	// Out receives one line per check, plus an ERROR line per failure
	Out io.Writer
}

// NewChecker creates a Checker. A nil fs selects the host filesystem.
func NewChecker(fs afero.Fs, out io.Writer) *Checker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Checker{
		Fs:  fs,
		Out: out,
	}
}

// Check tests every path in order and only then fails, so the user sees the
// full set of missing mount points in a single run.
func (c *Checker) Check(ctx context.Context, paths []string) error {
	log := clog.FromContext(ctx)

	var missing []string
	for _, path := range paths {
		fmt.Fprintln(c.Out, "Checking", shellquote.Join(path))

		ok, err := afero.IsDir(c.Fs, path)
		if err != nil {
			log.Debug("stat failed", "path", path, "error", err)
		}
		if !ok {
			fmt.Fprintf(c.Out, "ERROR: Mount-point %s does not exist or is not a folder\n", shellquote.Join(path))
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return &MissingMountsError{Paths: missing}
	}
	return nil
}
