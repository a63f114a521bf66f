package cmd

import "github.com/frgrisk/tidemark/internal/tideerr"

// exitCodeFor maps a resolver-layer error to its stable exit code
// (spec.md §6.3). Errors that never passed through tideerr (cobra's own
// usage errors, for instance) fall back to the "input/config validation"
// class, exit code 2.
func exitCodeFor(err error) int {
	if tideErr, ok := err.(*tideerr.Error); ok {
		return tideErr.ExitCode()
	}
	return 2
}
