package podman

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/chainguard-dev/clog"
	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/unix"

	"github.com/joshrwolf/genome-studio/internal/runtime"
)

// Podman runtime implementation
type Podman struct {
	// Path to podman binary (default: "podman")
	podmanPath string

	lookPath func(file string) (string, error)
	exec     func(argv0 string, argv []string, envv []string) error
}

// New creates a new Podman runtime. An empty path selects "podman" on PATH.
func New(path string) *Podman {
	if path == "" {
		path = "podman"
	}
	return &Podman{
		podmanPath: path,
		lookPath:   exec.LookPath,
		exec:       unix.Exec,
	}
}

// Command implements runtime.Runtime
func (p *Podman) Command(opts runtime.RunOptions) []string {
	return append([]string{p.podmanPath}, p.buildRunArgs(opts)...)
}

// Print implements runtime.Runtime
func (p *Podman) Print(w io.Writer, opts runtime.RunOptions) error {
	_, err := fmt.Fprintln(w, shellquote.Join(p.Command(opts)...))
	return err
}

// Run implements runtime.Runtime. On success it does not return.
func (p *Podman) Run(ctx context.Context, opts runtime.RunOptions) error {
	log := clog.FromContext(ctx)

	binary, err := p.lookPath(p.podmanPath)
	if err != nil {
		return fmt.Errorf("locating %s: %w", p.podmanPath, err)
	}

	argv := p.Command(opts)
	log.Debug("replacing process", "binary", binary, "args", argv)

	if err := p.exec(binary, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", binary, err)
	}
	return nil
}

// buildRunArgs builds the podman run arguments
func (p *Podman) buildRunArgs(opts runtime.RunOptions) []string {
	args := []string{"run", "--rm", "-it"}

	// Publish XRDP
	args = append(args, fmt.Sprintf("-p%d:%d", opts.Port, runtime.ContainerPort))

	// Map the container user onto the invoking user, one ID each
	args = append(args, "--uidmap", idMap(opts.UID))
	args = append(args, "--gidmap", idMap(opts.GID))

	// Wine prefix, relabeled for SELinux
	args = append(args, "-v", fmt.Sprintf("%s:%s:z", opts.WinePrefix, runtime.WinePrefixTarget))

	for _, m := range opts.Mounts {
		args = append(args, "-v", m+":"+m)
	}

	if !opts.Background {
		args = append(args, "--rm", "-it")
	}

	if opts.EntryPoint != nil {
		args = append(args, "--entrypoint", *opts.EntryPoint)
	}

	args = append(args, opts.Image)

	return args
}

func idMap(hostID int) string {
	return "+" + strconv.Itoa(runtime.ContainerID) + ":@" + strconv.Itoa(hostID) + ":1"
}
