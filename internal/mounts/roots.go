package mounts

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// MapsRoot is the shared-storage hierarchy all named roots live under.
const MapsRoot = "/maps"

// ScratchRoot is always mounted into the container.
const ScratchRoot = "/scratch"

// ProjectFolders are mounted for every project, in this order.
var ProjectFolders = []string{"apps", "data", "people", "scratch"}

// Identity describes the invoking user
type Identity struct {
	Username string
	HomeDir  string
	UID      int
	GID      int
}

// CurrentIdentity reads the invoking user's identity from the process
func CurrentIdentity() (Identity, error) {
	u, err := user.Current()
	if err != nil {
		return Identity{}, fmt.Errorf("looking up current user: %w", err)
	}

	home, err := homedir.Dir()
	if err != nil {
		return Identity{}, fmt.Errorf("resolving home directory: %w", err)
	}

	return Identity{
		Username: u.Username,
		HomeDir:  home,
		UID:      os.Getuid(),
		GID:      os.Getgid(),
	}, nil
}

// Roots holds the fixed base directories that named resources resolve under
type Roots struct {
	Scratch string
	Home    string
	Project string
	Dataset string
	HDir    string
	NDir    string
	SDir    string
}

// DefaultRoots returns the roots for the given identity
func DefaultRoots(id Identity) Roots {
	return Roots{
		Scratch: ScratchRoot,
		Home:    id.HomeDir,
		Project: filepath.Join(MapsRoot, "projects"),
		Dataset: filepath.Join(MapsRoot, "datasets"),
		HDir:    filepath.Join(MapsRoot, "hdir", id.Username),
		NDir:    filepath.Join(MapsRoot, "groupdir", id.Username),
		SDir:    filepath.Join(MapsRoot, "sdir", id.Username),
	}
}

// DefaultWinePrefix is the wine prefix used when none is given
func DefaultWinePrefix(id Identity) string {
	return filepath.Join(ScratchRoot, "containers", id.Username, "wineprefix")
}
