// Package resolver decides which directory to watch, from a flag value or
// by prompting on the terminal.
package resolver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

const (
	promptText  = "Enter a directory to watch: >>> "
	invalidText = "Invalid path supplied"
)

// Validate expands a leading ~ and checks that path is absolute and names an
// existing directory. It returns the cleaned path.
func Validate(path string) (string, error) {
	path = expandHome(strings.TrimSpace(path))
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %q", ErrNotAbsolute, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return filepath.Clean(path), nil
}

// Prompt asks for a directory on out until in yields a valid one.
func Prompt(in io.Reader, out io.Writer) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptText)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read path: %w", err)
			}
			return "", ErrNoInput
		}

		path, err := Validate(scanner.Text())
		if err == nil {
			return path, nil
		}
		fmt.Fprintf(out, "%s: %v\n", invalidText, err)
	}
}

// Resolve returns flagPath when it is valid. Otherwise it prompts, but only
// when interactive is set.
func Resolve(flagPath string, in io.Reader, out io.Writer, interactive bool) (string, error) {
	if flagPath != "" {
		path, err := Validate(flagPath)
		if err == nil {
			return path, nil
		}
		if !interactive {
			return "", fmt.Errorf("invalid watch path: %w", err)
		}
		fmt.Fprintf(out, "%s: %v\n", invalidText, err)
	}

	if !interactive {
		return "", ErrNotInteractive
	}
	return Prompt(in, out)
}

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
