package processes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptah-sh/deploy-action/pkg/processes"
)

func TestTemplateWithoutVariables(t *testing.T) {
	text := "- name: web\n  dockerImage: app:{{tag}}\n"
	output, err := processes.Template(text, processes.TemplateVariables{})
	assert.NoError(t, err)
	assert.Equal(t, text, output)
}

func TestTemplateFromFile(t *testing.T) {
	vars, err := processes.VariablesFromFile("testdata/vars.yaml")
	require.NoError(t, err)

	output, err := processes.Template("- name: web\n  dockerImage: nginx:{{tag}}\n  replicas: {{replicas}}\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "- name: web\n  dockerImage: nginx:1.25\n  replicas: 2\n", output)
}

func TestTemplateMissingFile(t *testing.T) {
	_, err := processes.VariablesFromFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestTemplateBrokenSyntax(t *testing.T) {
	_, err := processes.Template("- name: {{#if}}", processes.TemplateVariables{"a": "b"})
	assert.Error(t, err)
}

func TestVariablesFromSlice(t *testing.T) {
	vars := processes.VariablesFromSlice([]string{"tag=1.0", "debug", "url=http://x?a=b"})
	assert.Equal(t, processes.TemplateVariables{
		"tag":   "1.0",
		"debug": true,
		"url":   "http://x?a=b",
	}, vars)
}

func TestTemplateDoesNotEscape(t *testing.T) {
	vars := processes.TemplateVariables{
		"password": "a&b<c>'d\"",
		"nested":   map[string]any{"url": "http://x?a=1&b=2"},
		"list":     []any{"<first>"},
	}

	output, err := processes.Template("value: '{{password}}'\nurl: {{nested.url}}\nfirst: {{#each list}}{{this}}{{/each}}\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "value: 'a&b<c>'d\"'\nurl: http://x?a=1&b=2\nfirst: <first>\n", output)

	assert.Equal(t, "a&b<c>'d\"", vars["password"])
}
