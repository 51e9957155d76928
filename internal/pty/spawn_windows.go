//go:build windows

package pty

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Spawn is unsupported on Windows; sessions cannot be created there.
func (sp Spawner) Spawn() (*os.File, *exec.Cmd, error) {
	return nil, nil, fmt.Errorf("%w: %w", ErrPtyCreation, errors.ErrUnsupported)
}
