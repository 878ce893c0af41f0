package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/clog/slag"
	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshrwolf/genome-studio/internal/mounts"
	"github.com/joshrwolf/genome-studio/internal/profile"
	"github.com/joshrwolf/genome-studio/internal/runtime"
	"github.com/joshrwolf/genome-studio/internal/runtime/podman"
)

// envPrefix is prepended to the environment variables that can stand in for flags
const envPrefix = "GENOME_STUDIO"

type options struct {
	logLevel slag.Level

	projects   []string
	datasets   []string
	ndirs      []string
	sdirs      []string
	hdir       bool
	profile    string
	winePrefix string
	podman     string
	image      string
	uid        int
	gid        int
	port       int
	dryRun     bool
	background bool
	entryPoint *string

	id     mounts.Identity
	cwd    string
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	stdinIsTerminal func() bool
	newRuntime      func(path string) runtime.Runtime
}

// setupLogging configures logging for the command
func (o *options) setupLogging(ctx context.Context) context.Context {
	l := charmlog.NewWithOptions(o.stderr, charmlog.Options{
		Level:           charmlog.Level(o.logLevel),
		ReportTimestamp: true,
	})
	ctx = clog.WithLogger(ctx, clog.New(l))
	slog.SetDefault(slog.New(l))
	return ctx
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx)
	cancel()
	os.Exit(report(err, os.Stderr))
}

// report prints err with an ERROR prefix and returns the process exit code
func report(err error, w io.Writer) int {
	if err == nil {
		return 0
	}

	// Missing mounts were already reported one per line by the checker
	var missing *mounts.MissingMountsError
	if !errors.As(err, &missing) {
		fmt.Fprintln(w, "ERROR:", err)
	}
	return 1
}

func run(ctx context.Context) error {
	id, err := mounts.CurrentIdentity()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	opts := &options{
		id:     id,
		cwd:    cwd,
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,

		stdinIsTerminal: func() bool { return isTerminal(os.Stdin) },
		newRuntime: func(path string) runtime.Runtime {
			return podman.New(path)
		},
	}

	rootCmd, err := newRootCommand(ctx, opts)
	if err != nil {
		return err
	}
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(ctx context.Context, opts *options) (*cobra.Command, error) {
	v := viper.New()
	var entryPoint string

	rootCmd := &cobra.Command{
		Use:           "genome-studio",
		Short:         "Launch the genome-studio container with selected projects, datasets and group drives mounted",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx = opts.setupLogging(ctx)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.podman = v.GetString("podman")
			opts.port = v.GetInt("port")
			opts.winePrefix = v.GetString("wine-prefix")
			opts.image = v.GetString("image")
			if cmd.Flags().Changed("entry-point") {
				opts.entryPoint = &entryPoint
			}
			return opts.run(cmd.Context())
		},
	}
	rootCmd.SetOut(opts.stdout)
	rootCmd.SetErr(opts.stderr)

	// Define flags
	rootCmd.PersistentFlags().Var(&opts.logLevel, "log-level", "log level (debug, info, warn, error)")

	flags := rootCmd.Flags()
	flags.StringArrayVar(&opts.projects, "project", nil, "Name of project to make available in the container (repeatable)")
	flags.StringArrayVar(&opts.datasets, "dataset", nil, "Name of dataset to make available in the container (repeatable)")
	flags.BoolVar(&opts.hdir, "hdir", false, "Make the H-drive folder available in the container")
	flags.StringArrayVar(&opts.ndirs, "ndir", nil, "Name of N-drive group folder to make available in the container (repeatable)")
	flags.StringArrayVar(&opts.sdirs, "sdir", nil, "Name of S-drive group folder to make available in the container (repeatable)")
	flags.StringVar(&opts.profile, "profile", "", "YAML file listing resources to mount")
	flags.StringVar(&opts.winePrefix, "wine-prefix", mounts.DefaultWinePrefix(opts.id), "Location of wine prefix")
	flags.StringVar(&opts.podman, "podman", "podman", "podman executable")
	flags.StringVar(&opts.image, "image", runtime.DefaultImage, "Container image and version")
	flags.IntVar(&opts.uid, "uid", opts.id.UID, "UID for uidmap")
	flags.IntVar(&opts.gid, "gid", opts.id.GID, "GID for gidmap")
	flags.IntVar(&opts.port, "port", runtime.ContainerPort, "Exposed port for XRDP")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print podman command to be executed")
	flags.BoolVar(&opts.background, "background", false, "Run the container in the background, instead of interactively")
	flags.StringVar(&entryPoint, "entry-point", "", "Override podman container entry-point; empty clears it")

	// Scalar settings may also come from GENOME_STUDIO_* variables; flags win
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"podman", "port", "wine-prefix", "image"} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", key, err)
		}
	}

	return rootCmd, nil
}

func (o *options) run(ctx context.Context) error {
	log := clog.FromContext(ctx)

	log.Debug("starting genome-studio", "user", o.id.Username, "uid", o.uid, "gid", o.gid, "cwd", o.cwd)

	req := mounts.Request{
		Projects: o.projects,
		Datasets: o.datasets,
		SDirs:    o.sdirs,
		NDirs:    o.ndirs,
		HDir:     o.hdir,
	}
	entryPoint := o.entryPoint

	if o.profile != "" {
		p, err := profile.Load(o.profile)
		if err != nil {
			return err
		}
		log.Debug("loaded profile", "path", o.profile)

		req = p.Merge(req)
		if entryPoint == nil {
			entryPoint = p.EntryPoint
		}
	}

	runOpts := runtime.RunOptions{
		WinePrefix: o.winePrefix,
		UID:        o.uid,
		GID:        o.gid,
		Port:       o.port,
		Background: o.background,
		EntryPoint: entryPoint,
		Image:      o.image,
	}
	if err := runOpts.Validate(); err != nil {
		return err
	}

	points, err := mounts.Expand(ctx, mounts.DefaultRoots(o.id), req, o.cwd)
	if err != nil {
		return err
	}

	checker := mounts.NewChecker(o.fs, o.stderr)
	if err := checker.Check(ctx, points); err != nil {
		return err
	}
	runOpts.Mounts = points

	rt := o.newRuntime(o.podman)

	if o.dryRun {
		return rt.Print(o.stdout, runOpts)
	}

	if !o.background && !o.stdinIsTerminal() {
		log.Warn("stdin is not a terminal; interactive session may fail")
	}

	log.Info("launching container", "runtime", o.podman, "image", o.image, "mounts", len(points))
	return rt.Run(ctx, runOpts)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
