//go:build !windows

package pty

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// Spawn opens a PTY, sizes it, and starts the shell attached to the slave.
// The returned master is both the output reader and the input writer.
func (sp Spawner) Spawn() (*os.File, *exec.Cmd, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrPtyCreation, err)
	}
	// The child holds its own copy of the slave once started.
	defer tty.Close()

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: sp.Rows, Cols: sp.Cols}); err != nil {
		ptmx.Close()
		return nil, nil, fmt.Errorf("%w: set size: %w", ErrPtyCreation, err)
	}

	cmd := exec.Command(sp.Shell, sp.Args...)
	cmd.Env = append(os.Environ(), "TERM="+sp.Term)
	if cwd, err := os.Getwd(); err == nil {
		cmd.Dir = cwd
	}
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		ptmx.Close()
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrProcessSpawn, sp.Shell, err)
	}
	return ptmx, cmd, nil
}
