package cmd

import (
	"io"

	"github.com/charmbracelet/log"
)

var logger *log.Logger

func setupLogger(out io.Writer) {
	logger = log.New(out)
	logger.SetReportTimestamp(false)

	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else if quiet {
		logger.SetLevel(log.ErrorLevel)
	}
}
