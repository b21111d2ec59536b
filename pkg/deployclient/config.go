package deployclient

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
)

// Names of the inputs the client reads from its ConfigSource.
const (
	InputAPIKey                = "apiKey"
	InputService               = "service"
	InputProcesses             = "processes"
	InputProcessesFile         = "processesFile"
	InputServerAddress         = "serverAddress"
	InputActions               = "actions"
	InputDryRun                = "dryRun"
	InputPrintPayload          = "printPayload"
	InputQuiet                 = "quiet"
	InputLogLevel              = "logLevel"
	InputLogFormat             = "logFormat"
	InputVariables             = "var"
	InputVariablesFile         = "vars"
	InputOtelCollectorEndpoint = "otelCollectorEndpoint"
	InputPushgatewayURL        = "pushgatewayUrl"
	InputTimeout               = "timeout"

	OutputDeploymentID = "deploymentId"
)

// ConfigSource looks up named input values.
// An empty string means the input was not supplied.
type ConfigSource interface {
	Input(name string) string
}

// Sources chains several sources; the first one with a non-empty value wins.
type Sources []ConfigSource

func (s Sources) Input(name string) string {
	for _, source := range s {
		if value := source.Input(name); len(value) > 0 {
			return value
		}
	}
	return ""
}

type Config struct {
	APIKey                    string
	Service                   string
	Processes                 string
	ServerAddress             string
	Actions                   bool
	DryRun                    bool
	PrintPayload              bool
	Quiet                     bool
	LogLevel                  string
	LogFormat                 string
	Variables                 []string
	VariablesFile             string
	OpenTelemetryCollectorURL string
	PushgatewayURL            string
	Timeout                   time.Duration
}

// InitFlags declares the command line flags for every input.
// Flag names are the kebab-case form of the input names.
func InitFlags(fs *flag.FlagSet) {
	fs.String("api-key", "", "Bearer credential for the Ptah deployment API. (env PTAH_API_KEY)")
	fs.String("service", "", "Identifier of the service to deploy. (env PTAH_SERVICE)")
	fs.String("processes", "", "YAML list of processes to deploy. (env PTAH_PROCESSES)")
	fs.String("processes-file", "", "File containing the YAML list of processes, used when --processes is empty. (env PTAH_PROCESSES_FILE)")
	fs.String("server-address", "", fmt.Sprintf("Base URL of the Ptah control plane. Defaults to %s. (env PTAH_SERVER_ADDRESS)", DefaultServerAddress))
	fs.Bool("actions", false, "Use GitHub Actions compatible error and warning messages. Auto-detected. (env PTAH_ACTIONS)")
	fs.Bool("dry-run", false, "Validate the processes, but don't actually make any requests. (env PTAH_DRY_RUN)")
	fs.Bool("print-payload", false, "Print the deployment request body to standard output. (env PTAH_PRINT_PAYLOAD)")
	fs.Bool("quiet", false, "Suppress printing of informational messages except errors. (env PTAH_QUIET)")
	fs.String("log-level", "info", "Logging verbosity. (env PTAH_LOG_LEVEL)")
	fs.String("log-format", "text", "Log format, one of text, json. (env PTAH_LOG_FORMAT)")
	fs.StringArray("var", []string{}, "Template variable in the form KEY=VALUE. Can be specified multiple times. (env PTAH_VAR, one per line)")
	fs.String("vars", "", "File containing template variables. (env PTAH_VARS)")
	fs.String("otel-collector-endpoint", "", "OpenTelemetry collector endpoint; tracing is disabled when empty. (env PTAH_OTEL_COLLECTOR_ENDPOINT)")
	fs.String("pushgateway-url", "", "Prometheus Pushgateway to push run metrics to. (env PTAH_PUSHGATEWAY_URL)")
	fs.Duration("timeout", 0, "Time to wait for the deployment API to respond; 0 means no limit. (env PTAH_TIMEOUT)")
}

// NewConfig reads and checks every input.
func NewConfig(source ConfigSource) (*Config, error) {
	var err error

	cfg := &Config{
		ServerAddress: DefaultServerAddress,
		LogLevel:      "info",
		LogFormat:     "text",
	}

	required := func(name string) (string, error) {
		value := source.Input(name)
		if len(value) == 0 {
			return "", Errorf(ExitInvocationFailure, "Input required and not supplied: %s", name)
		}
		return value, nil
	}

	if cfg.APIKey, err = required(InputAPIKey); err != nil {
		return nil, err
	}

	if cfg.Service, err = required(InputService); err != nil {
		return nil, err
	}

	cfg.Processes = source.Input(InputProcesses)
	if len(cfg.Processes) == 0 {
		path := source.Input(InputProcessesFile)
		if len(path) == 0 {
			return nil, Errorf(ExitInvocationFailure, "Input required and not supplied: %s", InputProcesses)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, Errorf(ExitInvocationFailure, "%s: open file: %s", path, err)
		}
		cfg.Processes = string(data)
	}

	if value := source.Input(InputServerAddress); len(value) > 0 {
		cfg.ServerAddress = value
	}

	if value := source.Input(InputLogLevel); len(value) > 0 {
		cfg.LogLevel = value
	}

	if value := source.Input(InputLogFormat); len(value) > 0 {
		cfg.LogFormat = value
	}

	for _, input := range []struct {
		name   string
		target *bool
	}{
		{InputActions, &cfg.Actions},
		{InputDryRun, &cfg.DryRun},
		{InputPrintPayload, &cfg.PrintPayload},
		{InputQuiet, &cfg.Quiet},
	} {
		if *input.target, err = boolInput(source, input.name); err != nil {
			return nil, err
		}
	}

	if value := source.Input(InputTimeout); len(value) > 0 {
		cfg.Timeout, err = time.ParseDuration(value)
		if err != nil {
			return nil, Errorf(ExitInvocationFailure, "input %s: %s", InputTimeout, err)
		}
	}

	cfg.Variables = listInput(source, InputVariables)
	cfg.VariablesFile = source.Input(InputVariablesFile)
	cfg.OpenTelemetryCollectorURL = source.Input(InputOtelCollectorEndpoint)
	cfg.PushgatewayURL = source.Input(InputPushgatewayURL)

	return cfg, nil
}

func boolInput(source ConfigSource, name string) (bool, error) {
	value := source.Input(name)
	if len(value) == 0 {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, Errorf(ExitInvocationFailure, "input %s: expected a boolean, found %q", name, value)
	}
	return b, nil
}

// listInput splits a multi-line input into its non-empty lines.
func listInput(source ConfigSource, name string) []string {
	values := make([]string, 0)
	for _, line := range strings.Split(source.Input(name), "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 0 {
			values = append(values, line)
		}
	}
	return values
}
