package runtime

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-containerregistry/pkg/name"
)

// DefaultImage is the genome-studio image and version launched by default
const DefaultImage = "genome-studio:latest"

// ContainerPort is the XRDP port inside the container
const ContainerPort = 3389

// ContainerID is the in-container UID and GID mapped to the invoking user
const ContainerID = 1000

// WinePrefixTarget is where the wine prefix is mounted in the container
const WinePrefixTarget = "/opt/genome-studio/wineprefix"

// Runtime launches the genome-studio container
type Runtime interface {
	// Command returns the full argument vector, executable first
	Command(opts RunOptions) []string

	// Print writes the command to w as a shell-quoted line instead of running it
	Print(w io.Writer, opts RunOptions) error

	// Run replaces the current process with the container runtime
	Run(ctx context.Context, opts RunOptions) error
}

// RunOptions configures how to run the container
type RunOptions struct {
	// Host directories, each mounted at the identical path in the container
	Mounts []string

	// Wine prefix directory on the host
	WinePrefix string

	// Host UID and GID the container user is mapped onto
	UID int
	GID int

	// Host port published to the XRDP port
	Port int

	// Background skips the foreground --rm/-it pair
	Background bool

	// EntryPoint overrides the image entry-point when non-nil. An empty
	// string clears the image's entry-point.
	EntryPoint *string

	// Image reference, image:version
	Image string
}

// Validate checks the options that do not depend on the filesystem
func (o RunOptions) Validate() error {
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", o.Port)
	}
	if o.UID < 0 {
		return fmt.Errorf("uid %d must not be negative", o.UID)
	}
	if o.GID < 0 {
		return fmt.Errorf("gid %d must not be negative", o.GID)
	}
	if o.WinePrefix == "" {
		return fmt.Errorf("wine prefix must not be empty")
	}
	if _, err := name.ParseReference(o.Image); err != nil {
		return fmt.Errorf("parsing image reference %q: %w", o.Image, err)
	}
	return nil
}
