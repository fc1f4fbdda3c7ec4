package utils

import (
	"github.com/sirupsen/logrus"
)

// Log is the shared logger. Configured by bootstrap; usable before that with
// logrus defaults.
var Log = logrus.New()
