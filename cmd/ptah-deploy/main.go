package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/ptah-sh/deploy-action/pkg/actions"
	"github.com/ptah-sh/deploy-action/pkg/conftools"
	"github.com/ptah-sh/deploy-action/pkg/deployclient"
	"github.com/ptah-sh/deploy-action/pkg/telemetry"
	"github.com/ptah-sh/deploy-action/pkg/version"
)

const serviceName = "ptah-deploy"

func main() {
	err := run()
	if err == nil {
		return
	}
	code := deployclient.ErrorExitCode(err)
	if code == deployclient.ExitInvocationFailure && !actions.Running() {
		flag.Usage()
	}
	os.Exit(int(code))
}

func run() error {
	ctx := context.Background()

	// Configuration
	settings, err := conftools.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Errorf("fatal: %s", err)
		return deployclient.ErrorWrap(deployclient.ExitInvocationFailure, err)
	}

	var source deployclient.ConfigSource = settings
	var reporter deployclient.RunReporter = deployclient.NewConsoleReporter(os.Stdout)

	inActions := actions.Running()
	if inActions {
		source = deployclient.Sources{actions.Inputs{}, settings}
		reporter = actions.NewReporter(os.Stdout)
	}

	// Logging
	err = deployclient.SetupLogging(source, inActions)
	if err != nil {
		reporter.Fail(err.Error())
		return deployclient.ErrorWrap(deployclient.ExitInvocationFailure, err)
	}

	// Welcome
	log.Infof("Ptah deploy %s", version.Version())
	ts, err := version.BuildTime()
	if err == nil {
		log.Infof("This version was built %s", ts.Local())
	}
	if runURL := actions.WorkflowRunURL(); len(runURL) > 0 {
		log.Infof("Workflow run: %s", runURL)
	}

	for _, line := range conftools.Format(maskedConfig) {
		log.Debug(line)
	}

	// Tracing
	tracerProvider, err := telemetry.New(ctx, serviceName, source.Input(deployclient.InputOtelCollectorEndpoint))
	if err != nil {
		log.Warnf("Tracing disabled: %s", err)
	} else {
		defer func() {
			err := tracerProvider.Shutdown(ctx)
			if err != nil {
				log.Warnf("Unable to flush traces: %s", err)
			}
		}()
	}

	runner := &deployclient.Runner{
		Source:   source,
		Reporter: reporter,
		Payload:  os.Stdout,
	}

	// If running in GitHub actions, write a markdown summary
	summaryFile, err := actions.OpenSummary()
	if err != nil {
		log.Warnf("Unable to open step summary: %s", err)
	} else if summaryFile != nil {
		defer summaryFile.Close()
		runner.Summary = summaryFile
	}

	return runner.Run(ctx)
}
