package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the process-wide logrus logger.
func Init(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		if level != "" {
			logrus.Warnf("invalid log level %q, using info", level)
		}
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
