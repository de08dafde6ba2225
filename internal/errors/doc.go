// Package errors is the single errors import for ccdir.
//
// The wrapping helpers come from github.com/cockroachdb/errors. On top of
// them the package defines the sentinels shared across packages and
// ExitError, which tells main which exit code to use:
//
//	0  success
//	1  the user can fix it: bad input, unknown slug, invalid config
//	2  the environment failed: I/O, git, network, database
//
// Commands return NewUserError or NewSystemError with a suggestion. The
// suggestion is stored as a cockroachdb hint, so it survives further
// wrapping, and Print shows it after the message:
//
//	return errors.NewUserError(errors.Wrapf(err, "loading %s", slug), "Run: ccdir search "+slug)
package errors
