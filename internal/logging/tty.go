package logging

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorEnv overrides terminal detection: "always", "never" or "auto".
const ColorEnv = "CCDIR_COLOR"

// IsTTY reports whether w is a terminal. Any writer exposing Fd() is checked.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colors should be written to w.
// CCDIR_COLOR wins, then NO_COLOR (https://no-color.org), CLICOLOR_FORCE
// and TERM=dumb; otherwise color follows terminal detection.
func SupportsColor(w io.Writer) bool {
	return supportsColor(IsTTY(w))
}

func supportsColor(isTTY bool) bool {
	switch strings.ToLower(os.Getenv(ColorEnv)) {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
