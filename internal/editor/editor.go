// Package editor opens files in the user's text editor.
package editor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// EnvVar names the ccdir-specific editor override.
const EnvVar = "CCDIR_EDITOR"

// lookPath is exec.LookPath; tests replace it.
var lookPath = exec.LookPath

// Open runs the editor on path attached to the terminal and waits for it
// to exit. The editor comes from CCDIR_EDITOR, VISUAL or EDITOR, in that
// order, and may carry arguments ("code --wait"); without any, nano is
// used when installed and vi otherwise.
func Open(ctx context.Context, path string) error {
	return open(ctx, path, os.Stdin, os.Stdout, os.Stderr)
}

func open(ctx context.Context, path string, stdin io.Reader, stdout, stderr io.Writer) error {
	argv := append(strings.Fields(Command()), path)
	fmt.Fprintf(stderr, "Editing %s\n", path)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Command returns the editor command line that Open would run.
func Command() string {
	for _, env := range []string{EnvVar, "VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if _, err := lookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
