// Package cmdutil holds small helpers shared across cmd/cmft's subcommands:
// container format resolution from a file path and the Coalesce generic
// adapted from common/utils.go in the teacher repository.
package cmdutil

import (
	"os"

	"github.com/Carmen-Shannon/cmft/container"
)

// Coalesce returns the first of values that is not the zero value for T, or
// the zero value if all of them are.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// OpenInput opens path and resolves its container format from its
// extension.
func OpenInput(path string) (*os.File, container.Format, error) {
	format, err := container.FormatFromExtension(path)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	return f, format, nil
}

// CreateOutput creates path and resolves its container format from its
// extension.
func CreateOutput(path string) (*os.File, container.Format, error) {
	format, err := container.FormatFromExtension(path)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, 0, err
	}
	return f, format, nil
}
