package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const serviceName = "preventis"

// InstallService registers `preventis watch` as a user-level background
// service: a systemd user unit on Linux, a launchd agent on macOS. The
// service starts on login and restarts on failure.
func InstallService(exePath string) error {
	switch runtime.GOOS {
	case "linux":
		return installSystemdUnit(exePath)
	case "darwin":
		return installLaunchdAgent(exePath)
	default:
		return fmt.Errorf("background service is not supported on %s; run 'preventis watch' directly", runtime.GOOS)
	}
}

// UninstallService stops and removes the background service.
func UninstallService() error {
	switch runtime.GOOS {
	case "linux":
		return uninstallSystemdUnit()
	case "darwin":
		return uninstallLaunchdAgent()
	default:
		return fmt.Errorf("background service is not supported on %s", runtime.GOOS)
	}
}

// ServiceInstalled reports whether the service file exists for this platform.
func ServiceInstalled() bool {
	path, err := servicePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func servicePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "linux":
		return filepath.Join(home, ".config", "systemd", "user", serviceName+".service"), nil
	case "darwin":
		return filepath.Join(home, "Library", "LaunchAgents", "io.preventis.watch.plist"), nil
	default:
		return "", fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}

func installSystemdUnit(exePath string) error {
	path, err := servicePath()
	if err != nil {
		return err
	}

	unit := fmt.Sprintf(`[Unit]
Description=Preventis security monitor watch daemon
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart=%s watch
Restart=always
RestartSec=10

[Install]
WantedBy=default.target
`, exePath)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create systemd user directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(unit), 0644); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	for _, args := range [][]string{
		{"--user", "daemon-reload"},
		{"--user", "enable", serviceName},
		{"--user", "restart", serviceName},
	} {
		if err := exec.Command("systemctl", args...).Run(); err != nil {
			return fmt.Errorf("systemctl %v failed: %w", args, err)
		}
	}
	return nil
}

func uninstallSystemdUnit() error {
	path, err := servicePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	// Best effort: the unit may already be stopped or disabled.
	exec.Command("systemctl", "--user", "stop", serviceName).Run()
	exec.Command("systemctl", "--user", "disable", serviceName).Run()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove service file: %w", err)
	}
	exec.Command("systemctl", "--user", "daemon-reload").Run()
	return nil
}

func installLaunchdAgent(exePath string) error {
	path, err := servicePath()
	if err != nil {
		return err
	}

	plist := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>io.preventis.watch</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>watch</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
</dict>
</plist>
`, exePath)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(plist), 0644); err != nil {
		return fmt.Errorf("failed to write launchd plist: %w", err)
	}
	if err := exec.Command("launchctl", "load", path).Run(); err != nil {
		return fmt.Errorf("launchctl load failed: %w", err)
	}
	return nil
}

func uninstallLaunchdAgent() error {
	path, err := servicePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	exec.Command("launchctl", "unload", path).Run()
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove launchd plist: %w", err)
	}
	return nil
}
