// Package shlog provides the shell's internal diagnostic logger. It is
// never part of the user-visible shell protocol (prompts, command
// output, error text all go straight to the shell's own streams); this
// is strictly for operators running with SHELLCRAFT_DEBUG set.
package shlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)

	if os.Getenv("SHELLCRAFT_DEBUG") != "" {
		l.SetLevel(logrus.DebugLevel)
	}

	return l
}

// Logger returns the package-level diagnostic logger.
func Logger() *logrus.Logger {
	return log
}
