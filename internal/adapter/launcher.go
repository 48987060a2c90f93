package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsafeURL is returned for URLs that are not http(s)
var ErrUnsafeURL = errors.New("refusing to open non-web URL")

// Launcher opens web pages (movie pages, homepages) in a browser
type Launcher struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	goos    string
	logger  *slog.Logger

	// start runs the command without waiting for it
	start func(cmd *exec.Cmd) error
}

// NewLauncher creates a new Launcher
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		goos:    runtime.GOOS,
		logger:  logger,
		start:   func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open opens rawURL in the configured browser or the system default
func (l *Launcher) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrUnsafeURL, rawURL)
	}

	name, args := l.commandFor(rawURL)
	l.logger.Info("opening browser", "command", name, "args", args)

	if err := l.start(exec.Command(name, args...)); err != nil {
		l.logger.Error("failed to open browser", "error", err, "command", name)
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// commandFor resolves the program and arguments used to open rawURL
func (l *Launcher) commandFor(rawURL string) (string, []string) {
	// Tier 1: User configured a specific browser
	if l.command != "" {
		// On macOS, GUI apps outside PATH open through 'open -a'
		if l.goos == "darwin" {
			if _, err := exec.LookPath(l.command); err != nil {
				args := []string{"-a", l.command}
				if len(l.args) > 0 {
					args = append(args, "--args")
					args = append(args, l.args...)
				}
				return "open", append(args, rawURL)
			}
		}
		args := append([]string{}, l.args...)
		return l.command, append(args, rawURL)
	}

	// Tier 2: system default handler
	switch l.goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		return "cmd", []string{"/c", "start", "", rawURL}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{rawURL}
	}
}
