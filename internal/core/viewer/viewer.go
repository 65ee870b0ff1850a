package viewer

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Opener shows a saved deck in the desktop's presentation app
type Opener struct {
	// Optional override from config. {path} is replaced with the quoted deck path.
	CustomCommand string
	// GOOS to pick the launcher for, runtime.GOOS when empty
	GOOS string
}

// Command returns the command Open would start, without starting it
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	if o.CustomCommand != "" {
		cmdStr := strings.ReplaceAll(o.CustomCommand, "{path}", shellEscape(path))
		return exec.Command("sh", "-c", cmdStr), nil
	}

	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	switch goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), nil
	default:
		return nil, fmt.Errorf("don't know how to open files on %s, set open_command in config.toml", goos)
	}
}

// Open starts the viewer and returns without waiting for it
func (o *Opener) Open(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	// Reap the child when it exits
	go func() { _ = cmd.Wait() }()
	return nil
}

// shellEscape escapes a string for safe use in shell commands
func shellEscape(s string) string {
	// Simple escape: wrap in single quotes, escape single quotes
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
