// Package actions talks to the GitHub Actions runner through its environment and command files.
package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	EnvActions     = "GITHUB_ACTIONS"
	EnvOutput      = "GITHUB_OUTPUT"
	EnvStepSummary = "GITHUB_STEP_SUMMARY"

	// EnvSummary can be set to "false" to turn off the step summary.
	EnvSummary = "PTAH_DEPLOY_SUMMARY"

	delimiterPrefix = "ghadelimiter_"
)

// Running returns true when the process runs inside a GitHub Actions job.
func Running() bool {
	return os.Getenv(EnvActions) == "true"
}

// Inputs reads action inputs, which the runner passes as INPUT_<NAME> environment variables.
type Inputs struct{}

func (Inputs) Input(name string) string {
	return strings.TrimSpace(os.Getenv(InputVariable(name)))
}

// InputVariable returns the environment variable holding the named input.
func InputVariable(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// Reporter publishes step outputs and failures to the runner.
type Reporter struct {
	// Out receives workflow commands.
	Out io.Writer

	// OutputFile is the GITHUB_OUTPUT file. When empty, outputs are set with the legacy set-output command.
	OutputFile string
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		Out:        out,
		OutputFile: os.Getenv(EnvOutput),
	}
}

func (r *Reporter) SetOutput(name, value string) error {
	if len(r.OutputFile) == 0 {
		_, err := fmt.Fprintf(r.Out, "::set-output name=%s::%s\n", escapeProperty(name), escapeData(value))
		return err
	}

	file, err := os.OpenFile(r.OutputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	delimiter := delimiterPrefix + uuid.New().String()
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return fmt.Errorf("output %s contains its own delimiter", name)
	}

	_, err = fmt.Fprintf(file, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	return err
}

func (r *Reporter) Fail(message string) {
	_, _ = fmt.Fprintf(r.Out, "::error::%s\n", escapeData(message))
}

// OpenSummary opens the step summary file for appending.
// It returns nil when there is no summary file, or the summary has been turned off.
func OpenSummary() (*os.File, error) {
	path := os.Getenv(EnvStepSummary)
	if len(path) == 0 || strings.ToLower(os.Getenv(EnvSummary)) == "false" {
		return nil, nil
	}
	return os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
}

// WorkflowRunURL links to the current workflow run, or returns an empty string outside of GitHub Actions.
func WorkflowRunURL() string {
	server, ok := os.LookupEnv("GITHUB_SERVER_URL")
	if !ok {
		return ""
	}
	repo, ok := os.LookupEnv("GITHUB_REPOSITORY")
	if !ok {
		return ""
	}
	runID, ok := os.LookupEnv("GITHUB_RUN_ID")
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s/%s/actions/runs/%s", server, repo, runID)
}

var dataEscaper = strings.NewReplacer(
	"%", "%25",
	"\r", "%0D",
	"\n", "%0A",
)

var propertyEscaper = strings.NewReplacer(
	"%", "%25",
	"\r", "%0D",
	"\n", "%0A",
	":", "%3A",
	",", "%2C",
)

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}

func escapeProperty(s string) string {
	return propertyEscaper.Replace(s)
}
