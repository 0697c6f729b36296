package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// replaced in tests
var browserPlatform = func() string { return runtime.GOOS }

// OpenBrowser launches the default browser at url. The Spotify auth flow uses
// it to hand the user off to the consent page; callers treat failure as
// non-fatal and print the URL for manual use.
func OpenBrowser(url string) error {
	platform := browserPlatform()
	name, args := browserCommand(platform, url)
	if name == "" {
		return fmt.Errorf("no browser launcher for platform: %s", platform)
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func browserCommand(goos, url string) (name string, args []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "linux":
		return "xdg-open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", url}
	}
	return "", nil
}
