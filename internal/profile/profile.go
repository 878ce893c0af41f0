package profile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshrwolf/genome-studio/internal/mounts"
)

// Profile is a reusable set of resources to mount, read from YAML
type Profile struct {
	Projects   []string `yaml:"projects"`
	Datasets   []string `yaml:"datasets"`
	SDirs      []string `yaml:"sdirs"`
	NDirs      []string `yaml:"ndirs"`
	HDir       bool     `yaml:"hdir"`
	EntryPoint *string  `yaml:"entry-point"`
}

// Parse reads a profile. Unknown keys are rejected.
func Parse(r io.Reader) (*Profile, error) {
	var p Profile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &p, nil
		}
		return nil, fmt.Errorf("unmarshaling YAML: %w", err)
	}

	return &p, nil
}

// Load reads the profile at path
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening profile: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return p, nil
}

// Merge returns a request with the profile's names first, followed by req's
func (p *Profile) Merge(req mounts.Request) mounts.Request {
	return mounts.Request{
		Projects: concat(p.Projects, req.Projects),
		Datasets: concat(p.Datasets, req.Datasets),
		SDirs:    concat(p.SDirs, req.SDirs),
		NDirs:    concat(p.NDirs, req.NDirs),
		HDir:     p.HDir || req.HDir,
	}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
