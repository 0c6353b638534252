package cmd

import (
	"os/exec"
	"runtime"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/ui"
)

// openBrowser tries to open url in the default browser
func openBrowser(url string) bool {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return false
	}
	return cmd.Start() == nil
}

// offerOpen counts down before opening url; any key other than Enter skips
func (a *app) offerOpen(url string) {
	if !isTTY() {
		return
	}
	timeout := viper.GetDuration("open_timeout")
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}

	open, err := ui.RunCountdown("Open in browser?", timeout)
	if err != nil {
		a.logger.Debug("open prompt failed", zap.Error(err))
		return
	}
	if open && !openBrowser(url) {
		a.println(a.renderer.WarningMessage("Could not open a browser; visit the URL above"))
	}
}
