package mounts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

var ErrInvalidName = errors.New("invalid resource name")

// ValidationError reports a name that resolves outside of its root.
type ValidationError struct {
	Kind  string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s contains dir component; use name only", e.Kind, shellquote.Join(e.Value))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidName
}

// MissingMountsError lists every mount point that failed the existence check.
type MissingMountsError struct {
	Paths []string
}

func (e *MissingMountsError) Error() string {
	quoted := make([]string, 0, len(e.Paths))
	for _, p := range e.Paths {
		quoted = append(quoted, shellquote.Join(p))
	}
	return fmt.Sprintf("%d mount-point(s) missing: %s", len(e.Paths), strings.Join(quoted, ", "))
}
