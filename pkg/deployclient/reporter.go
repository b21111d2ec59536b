package deployclient

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// ConsoleReporter reports outputs as name=value lines, for use outside of a CI host.
type ConsoleReporter struct {
	Out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{Out: out}
}

func (c *ConsoleReporter) SetOutput(name, value string) error {
	_, err := fmt.Fprintf(c.Out, "%s=%s\n", name, value)
	return err
}

func (c *ConsoleReporter) Fail(message string) {
	log.Error(message)
}
