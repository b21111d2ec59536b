package deployclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	ocodes "go.opentelemetry.io/otel/codes"

	"github.com/ptah-sh/deploy-action/pkg/metrics"
	"github.com/ptah-sh/deploy-action/pkg/processes"
	"github.com/ptah-sh/deploy-action/pkg/telemetry"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) Finished() bool {
	return s == StateSucceeded || s == StateFailed
}

// RunReporter publishes the outcome of a run to whoever started it.
type RunReporter interface {
	SetOutput(name, value string) error
	Fail(message string)
}

// Runner performs one deployment: read inputs, validate the processes, submit them.
type Runner struct {
	Source   ConfigSource
	Reporter RunReporter

	// HTTPClient is used for the API call. When nil, a client honoring the timeout input is created.
	HTTPClient *http.Client

	// Payload receives the request body when the print-payload input is set.
	Payload io.Writer

	// Summary receives a markdown summary of the run; nil disables it.
	Summary io.Writer

	state State
}

func (r *Runner) State() State {
	return r.state
}

func (r *Runner) transition(state State) {
	log.Debugf("Run state: %s -> %s", r.state, state)
	r.state = state
}

// Run executes the deployment. Any error ends the run; it is reported exactly once
// through the RunReporter and returned so the caller can pick an exit code.
func (r *Runner) Run(ctx context.Context) error {
	// Root span for tracing.
	// All sub-spans must be created from this context.
	ctx, span := telemetry.Tracer().Start(ctx, "Deploy processes")
	defer span.End()

	r.state = StateIdle

	cfg, result, err := r.run(ctx)
	if err != nil {
		r.transition(StateFailed)
		span.SetStatus(ocodes.Error, err.Error())
		r.summary("## Ptah deploy")
		r.summary("")
		r.summary("Deployment failed: %s", err)
		r.Reporter.Fail(err.Error())
		metrics.RunFinished(StateFailed.String())
		r.push(ctx, cfg)
		return err
	}

	r.transition(StateSucceeded)
	metrics.RunFinished(StateSucceeded.String())

	if result != nil {
		r.summary("## Ptah deploy")
		r.summary("")
		r.summary("* Service: %s", cfg.Service)
		r.summary("* Deployment ID: %s", result.DeploymentID)
		r.summary("* Deployments: [%s](%s)", result.Link, result.Link)
		if traceID := telemetry.TraceID(ctx); len(traceID) > 0 {
			r.summary("* Trace ID: %s", traceID)
		}
	}

	r.push(ctx, cfg)

	return nil
}

func (r *Runner) run(ctx context.Context) (*Config, *DeploymentResult, error) {
	cfg, err := NewConfig(r.Source)
	if err != nil {
		return nil, nil, err
	}

	r.transition(StateValidating)

	processList, err := Prepare(cfg)
	if err != nil {
		return cfg, nil, err
	}

	log.Infof("Deploying service: %s", cfg.Service)
	log.Infof("Received %d process(es) to deploy", len(processList))

	if cfg.PrintPayload && r.Payload != nil {
		payload, err := json.MarshalIndent(MakeDeploymentRequest(processList), "", "  ")
		if err != nil {
			return cfg, nil, ErrorWrap(ExitInternalError, fmt.Errorf("marshal deployment request: %w", err))
		}
		fmt.Fprintln(r.Payload, string(payload))
	}

	if cfg.DryRun {
		log.Infof("Dry run; not submitting deployment request")
		return cfg, nil, nil
	}

	r.transition(StateSubmitting)

	submitter := &Submitter{
		Client:        r.httpClient(cfg),
		ServerAddress: cfg.ServerAddress,
		APIKey:        cfg.APIKey,
	}

	result, err := submitter.Submit(ctx, cfg.Service, processList)
	if err != nil {
		return cfg, nil, err
	}

	metrics.ProcessesSubmitted(len(processList))

	err = r.Reporter.SetOutput(OutputDeploymentID, result.DeploymentID)
	if err != nil {
		return cfg, nil, ErrorWrap(ExitInternalError, fmt.Errorf("set output %s: %w", OutputDeploymentID, err))
	}

	return cfg, result, nil
}

// Prepare turns the processes input into a validated process list.
func Prepare(cfg *Config) ([]processes.ProcessSpec, error) {
	var err error
	templateVariables := make(processes.TemplateVariables)

	if len(cfg.VariablesFile) > 0 {
		templateVariables, err = processes.VariablesFromFile(cfg.VariablesFile)
		if err != nil {
			return nil, Errorf(ExitInvocationFailure, "load template variables: %s", err)
		}
	}

	if len(cfg.Variables) > 0 {
		templateOverrides := processes.VariablesFromSlice(cfg.Variables)
		for key, val := range templateOverrides {
			if oldval, ok := templateVariables[key]; ok {
				log.Warnf("Overwriting template variable '%s'; previous value was '%v'", key, oldval)
			}
			log.Debugf("Setting template variable '%s' to '%v'", key, val)
			templateVariables[key] = val
		}
	}

	text, err := processes.Template(cfg.Processes, templateVariables)
	if err != nil {
		return nil, Errorf(ExitTemplateError, "template processes: %s", err)
	}

	raw, err := processes.Decode(text)
	if err != nil {
		var parseErr *processes.ParseError
		if errors.As(err, &parseErr) {
			log.Debugf("YAML parser: %s", parseErr.Cause)
		}
		return nil, ErrorWrap(ExitParseError, err)
	}

	result := processes.Validate(raw)
	if !result.OK() {
		var schemaErr *processes.SchemaError
		if errors.As(result.Err(), &schemaErr) {
			log.WithFields(log.Fields{
				"process_index": schemaErr.ProcessIndex(),
				"field":         schemaErr.Field,
			}).Debugf("Schema violation: %s", schemaErr)
		}
		return nil, ErrorWrap(ExitSchemaError, result.Err())
	}

	for _, process := range result.Processes() {
		log.Debugf("Process '%s' with image '%s' and %d environment variable(s)", process.Name, process.Image(), len(process.EnvVars))
	}

	return result.Processes(), nil
}

func (r *Runner) httpClient(cfg *Config) *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{
		Timeout: cfg.Timeout,
	}
}

func (r *Runner) summary(format string, a ...any) {
	if r.Summary == nil {
		return
	}
	_, _ = fmt.Fprintf(r.Summary, format+"\n", a...)
}

// push sends run metrics to the Pushgateway, if one is configured.
func (r *Runner) push(ctx context.Context, cfg *Config) {
	if cfg == nil || len(cfg.PushgatewayURL) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.Service)
	if err != nil {
		log.Warnf("Unable to push metrics to %s: %s", cfg.PushgatewayURL, err)
	}
}
