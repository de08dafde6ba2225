// Package prompt asks the user to pick between catalog entries that share
// a slug.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// maxAttempts bounds how often an invalid answer is asked again.
const maxAttempts = 3

var (
	ErrNoResources        = errors.New("no resources to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector reads a choice from an interactive terminal.
type Selector struct {
	in  *bufio.Reader
	out io.Writer
}

// NewSelector reads stdin and writes stderr so the chosen entry can still
// be piped from stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stderr)
}

// NewSelectorWithIO creates a Selector over r and w.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{in: bufio.NewReader(r), out: w}
}

// SelectResource lists the entries named slug and returns the one the user
// picks. An answer is a list number or a type name such as "prompt" or
// "tool"; an empty answer takes the first entry. A single entry is returned
// without asking. Invalid answers are asked again a few times before
// ErrInvalidSelection is returned; end of input yields ErrSelectionCancelled.
func (s *Selector) SelectResource(slug string, resources []resource.Resource) (*resource.Resource, error) {
	switch len(resources) {
	case 0:
		return nil, ErrNoResources
	case 1:
		return &resources[0], nil
	}

	fmt.Fprintf(s.out, "%q names %d entries:\n", slug, len(resources))
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for i, r := range resources {
		fmt.Fprintf(tw, "  [%d]\t%s\t%s\t%s\n", i+1, r.Type.Label(), r.Title, r.Tagline)
	}
	if err := tw.Flush(); err != nil {
		return nil, errors.Wrap(err, "writing choices")
	}

	var lastErr error
	for range maxAttempts {
		fmt.Fprint(s.out, "Select [1]: ")
		line, err := s.in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			if errors.Is(err, io.EOF) {
				return nil, ErrSelectionCancelled
			}
			return nil, errors.Wrap(err, "reading selection")
		}

		idx, perr := parseAnswer(strings.TrimSpace(line), resources)
		if perr == nil {
			return &resources[idx], nil
		}
		lastErr = perr
		fmt.Fprintf(s.out, "  %v\n", perr)
		if err != nil {
			break
		}
	}
	return nil, lastErr
}

// parseAnswer maps an answer to an index into resources.
func parseAnswer(answer string, resources []resource.Resource) (int, error) {
	if answer == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(resources) {
			return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", n, len(resources))
		}
		return n - 1, nil
	}
	if t, ok := resource.ParseType(answer); ok {
		for i, r := range resources {
			if r.Type == t {
				return i, nil
			}
		}
		return 0, errors.Wrapf(ErrInvalidSelection, "no %s among the entries", t.Label())
	}
	return 0, errors.Wrapf(ErrInvalidSelection, "%q is neither a number nor a type", answer)
}
