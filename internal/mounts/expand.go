package mounts

import (
	"context"
	"path/filepath"

	"github.com/chainguard-dev/clog"
)

// Request lists the named resources a user asked to have mounted.
type Request struct {
	Projects []string
	Datasets []string
	SDirs    []string
	NDirs    []string
	HDir     bool
}

// ValidateName resolves raw relative to cwd and returns its leaf name. The
// resolved path must sit directly in cwd or in root; anything else would
// escape the root once joined onto it.
func ValidateName(kind, raw, root, cwd string) (string, error) {
	resolved := raw
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(cwd, resolved)
	}
	resolved = filepath.Clean(resolved)

	leaf := filepath.Base(resolved)
	if raw == "" || leaf == "." || leaf == ".." || leaf == string(filepath.Separator) {
		return "", &ValidationError{Kind: kind, Value: raw}
	}

	parent := filepath.Dir(resolved)
	if parent != filepath.Clean(cwd) && parent != filepath.Clean(root) {
		return "", &ValidationError{Kind: kind, Value: resolved}
	}

	return leaf, nil
}

// Expand validates every name in req and returns the ordered list of mount
// points: scratch, home, projects, datasets, S-drives, N-drives, H-drive.
// Validation stops at the first bad name.
func Expand(ctx context.Context, roots Roots, req Request, cwd string) ([]string, error) {
	log := clog.FromContext(ctx)

	points := []string{roots.Scratch, roots.Home}

	for _, raw := range req.Projects {
		name, err := ValidateName("Project", raw, roots.Project, cwd)
		if err != nil {
			return nil, err
		}
		for _, sub := range ProjectFolders {
			points = append(points, filepath.Join(roots.Project, name, sub))
		}
	}

	groups := []struct {
		kind  string
		root  string
		names []string
	}{
		{"Dataset", roots.Dataset, req.Datasets},
		{"S-drive group", roots.SDir, req.SDirs},
		{"N-drive group", roots.NDir, req.NDirs},
	}
	for _, g := range groups {
		for _, raw := range g.names {
			name, err := ValidateName(g.kind, raw, g.root, cwd)
			if err != nil {
				return nil, err
			}
			points = append(points, filepath.Join(g.root, name))
		}
	}

	if req.HDir {
		points = append(points, roots.HDir)
	}

	log.Debug("expanded mount points", "count", len(points), "mounts", points)
	return points, nil
}
