package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmcdole/filmora/internal/adapter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newSetupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure API credentials",
		Long: `Prompts for the TMDB API read access token and, optionally, a Gemini API key
and writes them to the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(e, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// prompter reads answers line by line, hiding input when it comes from a terminal
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	input, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func (p *prompter) secret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label)
	}

	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out) // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func runSetup(e *env, in io.Reader, out io.Writer) error {
	cfg := e.cfg
	p := newPrompter(in, out)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Welcome to Filmora!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Create an API read access token at https://www.themoviedb.org/settings/api")
	fmt.Fprintln(out)

	for {
		token, err := p.secret("TMDB access token: ")
		if err != nil {
			return err
		}
		if token != "" {
			cfg.Catalog.AccessToken = token
			break
		}
		if cfg.IsConfigured() {
			// Keep the existing token
			break
		}
		fmt.Fprintln(out, "Access token cannot be empty. Please try again.")
	}

	key, err := p.secret("Gemini API key (enter to skip): ")
	if err != nil {
		return err
	}
	if key != "" {
		cfg.Chat.APIKey = key
	}

	lang, err := p.line(fmt.Sprintf("Language [%s]: ", cfg.Catalog.Language))
	if err != nil {
		return err
	}
	if lang != "" {
		cfg.Catalog.Language = lang
	}

	if err := e.saveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	e.logger.Info("configuration saved", "chat", cfg.ChatEnabled())

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Configuration saved to %s\n", adapter.ConfigPath())
	if !cfg.ChatEnabled() {
		fmt.Fprintln(out, "  Chat is disabled until a Gemini API key is set.")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run filmora again to start the application.")

	return nil
}
