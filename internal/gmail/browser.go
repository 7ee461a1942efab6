package gmail

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// browserCommands maps GOOS to the command that opens a URL in the default
// browser; the URL is appended as the last argument.
var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenBrowser opens an http(s) URL in the user's default browser. Other
// schemes are refused so the URL can never become a command.
func OpenBrowser(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open non-HTTP URL: %s", raw)
	}
	argv, ok := browserCommands[runtime.GOOS]
	if !ok {
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	args := append(append([]string{}, argv[1:]...), raw)
	return exec.Command(argv[0], args...).Start()
}
