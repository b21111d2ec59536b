package deployclient_test

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptah-sh/deploy-action/pkg/deployclient"
	"github.com/ptah-sh/deploy-action/pkg/logging"
)

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	err := deployclient.SetupLogging(inputs{deployclient.InputLogLevel: "debug", deployclient.InputLogFormat: "json"}, false)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	err = deployclient.SetupLogging(inputs{deployclient.InputQuiet: "true"}, true)
	require.NoError(t, err)
	assert.Equal(t, log.ErrorLevel, log.GetLevel())
	assert.IsType(t, &logging.ActionsFormatter{}, log.StandardLogger().Formatter)

	err = deployclient.SetupLogging(inputs{deployclient.InputActions: "true"}, false)
	require.NoError(t, err)
	assert.IsType(t, &logging.ActionsFormatter{}, log.StandardLogger().Formatter)

	err = deployclient.SetupLogging(inputs{deployclient.InputLogFormat: "xml"}, false)
	assert.Error(t, err)
}

func TestConsoleReporter(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := deployclient.NewConsoleReporter(out)

	require.NoError(t, reporter.SetOutput(deployclient.OutputDeploymentID, "dep-1"))
	assert.Equal(t, "deploymentId=dep-1\n", out.String())
}
