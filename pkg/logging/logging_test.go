package logging_test

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/ptah-sh/deploy-action/pkg/logging"
)

func TestActionsFormatter(t *testing.T) {
	formatter := &logging.ActionsFormatter{}
	tm := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

	for _, testCase := range []struct {
		level    log.Level
		expected string
	}{
		{log.ErrorLevel, "::error::hello\n"},
		{log.WarnLevel, "::warning::hello\n"},
		{log.DebugLevel, "::debug::hello\n"},
		{log.InfoLevel, "[2024-05-01T12:00:00Z] hello\n"},
	} {
		entry := &log.Entry{Level: testCase.level, Message: "hello", Time: tm}
		output, err := formatter.Format(entry)
		assert.NoError(t, err)
		assert.Equal(t, testCase.expected, string(output))
	}
}

func TestSetup(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	assert.NoError(t, logging.Setup("debug", "json"))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	assert.EqualError(t, logging.Setup("info", "xml"), "log format 'xml' is not recognized")
	assert.Error(t, logging.Setup("loud", "text"))
}
