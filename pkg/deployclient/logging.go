package deployclient

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ptah-sh/deploy-action/pkg/logging"
)

// SetupLogging configures the global logger from the logging related inputs.
// It runs before the rest of the configuration is read, so that errors there are formatted correctly.
func SetupLogging(source ConfigSource, actions bool) error {
	log.SetOutput(os.Stderr)

	level := source.Input(InputLogLevel)
	if len(level) == 0 {
		level = "info"
	}

	format := source.Input(InputLogFormat)
	if len(format) == 0 {
		format = "text"
	}

	if !actions {
		actions, _ = boolInput(source, InputActions)
	}
	if actions {
		format = "actions"
	}

	if quiet, _ := boolInput(source, InputQuiet); quiet {
		level = log.ErrorLevel.String()
	}

	return logging.Setup(level, format)
}
