package pty

import "errors"

// Fixed shell setup. The shell and terminal type are not configurable.
const (
	DefaultShell = "zsh"
	DefaultTerm  = "xterm-256color"
	DefaultRows  = 30
	DefaultCols  = 100
)

var (
	// ErrPtyCreation is returned when the OS cannot allocate a pseudo-terminal.
	ErrPtyCreation = errors.New("failed to create PTY")

	// ErrProcessSpawn is returned when the shell cannot be launched.
	ErrProcessSpawn = errors.New("failed to spawn shell")
)

// Spawner opens a PTY pair and starts a shell on its slave side.
type Spawner struct {
	Shell string
	Args  []string
	Term  string
	Rows  uint16
	Cols  uint16
}

// DefaultSpawner returns the spawner used for every UI session. PROMPT_EOL_MARK
// is cleared so zsh does not print a reverse-video % when output lacks a
// trailing newline.
func DefaultSpawner() Spawner {
	return Spawner{
		Shell: DefaultShell,
		Args:  []string{"-c", "export PROMPT_EOL_MARK=''; exec zsh"},
		Term:  DefaultTerm,
		Rows:  DefaultRows,
		Cols:  DefaultCols,
	}
}
