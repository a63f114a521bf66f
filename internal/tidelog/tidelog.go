// Package tidelog is the single logrus entry point for tidemark's
// diagnostic stream. It never writes to stdout: resolver output belongs to
// internal/output, and this package is confined to stderr.
package tidelog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the package-level logrus instance every layer logs through,
// following the teacher's `log "github.com/sirupsen/logrus"` convention.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	Logger.SetLevel(logrus.InfoLevel)
}

// SetVerbose raises the logger to debug level when --verbose is set.
func SetVerbose(verbose bool) {
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.InfoLevel)
	}
}
