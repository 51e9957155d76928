package preflight

import (
	"fmt"
	"os/exec"

	"github.com/peterje/shelll/internal/focus"
	"github.com/peterje/shelll/internal/models"
)

// CheckAll reports whether the session shell is on PATH and whether focus
// tracking is available on this platform.
func CheckAll(shell string) (models.ShellStatus, bool) {
	status := checkShell(shell)
	if !status.Installed {
		fmt.Printf("⚠ %s is not installed. Sessions cannot be created until it is on PATH.\n", shell)
	} else {
		fmt.Printf("✓ %s found (%s)\n", status.Name, status.Path)
	}

	if focus.Supported {
		fmt.Println("✓ focus tracking available")
	} else {
		fmt.Println("⚠ focus tracking is not supported on this platform")
	}
	return status, focus.Supported
}

func checkShell(name string) models.ShellStatus {
	path, err := exec.LookPath(name)
	if err != nil {
		return models.ShellStatus{Name: name, Installed: false}
	}
	return models.ShellStatus{Name: name, Installed: true, Path: path}
}
