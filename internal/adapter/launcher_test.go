package adapter

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLauncher(command string, args []string, goos string) (*Launcher, *[]*exec.Cmd) {
	var started []*exec.Cmd
	l := NewLauncher(command, args, NullLogger())
	l.goos = goos
	l.start = func(cmd *exec.Cmd) error {
		started = append(started, cmd)
		return nil
	}
	return l, &started
}

func TestLauncherSystemDefault(t *testing.T) {
	const page = "https://www.themoviedb.org/movie/949"
	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", page}},
		{"windows", []string{"cmd", "/c", "start", "", page}},
		{"linux", []string{"xdg-open", page}},
		{"freebsd", []string{"xdg-open", page}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			l, started := testLauncher("", nil, tt.goos)
			require.NoError(t, l.Open(page))
			require.Len(t, *started, 1)
			assert.Equal(t, tt.want, (*started)[0].Args)
		})
	}
}

func TestLauncherConfiguredBrowser(t *testing.T) {
	l, _ := testLauncher("sh", []string{"--new-tab"}, "linux")
	name, args := l.commandFor("https://example.com/heat")
	assert.Equal(t, "sh", name)
	assert.Equal(t, []string{"--new-tab", "https://example.com/heat"}, args)

	// configured args are not mutated between calls
	_, args = l.commandFor("https://example.com/ronin")
	assert.Equal(t, []string{"--new-tab", "https://example.com/ronin"}, args)
}

func TestLauncherMacAppOutsidePath(t *testing.T) {
	l, _ := testLauncher("Definitely Not A Browser", []string{"--private"}, "darwin")
	name, args := l.commandFor("https://example.com")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"-a", "Definitely Not A Browser", "--args", "--private", "https://example.com"}, args)
}

func TestLauncherRejectsNonWebURLs(t *testing.T) {
	l, started := testLauncher("", nil, "linux")
	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "", "https://"} {
		assert.ErrorIs(t, l.Open(u), ErrUnsafeURL, u)
	}
	assert.Empty(t, *started)
}

func TestLauncherStartFailure(t *testing.T) {
	l, _ := testLauncher("", nil, "linux")
	l.start = func(*exec.Cmd) error { return errors.New("exec: not found") }
	assert.Error(t, l.Open("https://example.com"))
}
