package robo

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

type launcher struct{}

func (launcher) StartProcess(target, appPath string) error {
	path := target
	if appPath != "" {
		if _, err := os.Stat(appPath); err != nil {
			return fmt.Errorf("app path not found: %s", appPath)
		}
		path = appPath
	}
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	// Detach: the interpreter does not manage the target's lifetime.
	return cmd.Process.Release()
}

func (launcher) OpenURL(url, appPath string) error {
	if appPath != "" {
		if _, err := os.Stat(appPath); err == nil {
			cmd := exec.Command(appPath, url)
			if err := cmd.Start(); err != nil {
				return fmt.Errorf("open %s in %s: %w", url, appPath, err)
			}
			return cmd.Process.Release()
		}
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return cmd.Process.Release()
}
