package processes_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptah-sh/deploy-action/pkg/processes"
)

func decode(t *testing.T, text string) any {
	t.Helper()
	value, err := processes.Decode(text)
	require.NoError(t, err)
	return value
}

func TestValidateTopLevel(t *testing.T) {
	for _, testCase := range []struct {
		name  string
		input any
		err   string
	}{
		{"nil", nil, processes.NotArrayMessage},
		{"string", "web", processes.NotArrayMessage},
		{"number", 42, processes.NotArrayMessage},
		{"mapping", map[string]any{"name": "web"}, processes.NotArrayMessage},
		{"empty list", []any{}, processes.EmptyArrayMessage},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			result := processes.Validate(testCase.input)
			assert.False(t, result.OK())
			assert.EqualError(t, result.Err(), testCase.err)
			assert.Nil(t, result.Processes())

			var schemaErr *processes.SchemaError
			require.True(t, errors.As(result.Err(), &schemaErr))
			assert.Equal(t, -1, schemaErr.ProcessIndex())
		})
	}
}

func TestValidateViolations(t *testing.T) {
	for _, testCase := range []struct {
		name  string
		yaml  string
		err   string
		field string
		path  []int
	}{
		{
			name: "process is not an object",
			yaml: "- web",
			err:  "Process at index 0 must be an object",
			path: []int{0},
		},
		{
			name: "process is null",
			yaml: "- name: web\n- null",
			err:  "Process at index 1 must be an object",
			path: []int{1},
		},
		{
			name:  "name missing",
			yaml:  "- dockerImage: app:1.0",
			err:   "Process at index 0 must have a non-empty 'name' string",
			field: "name",
			path:  []int{0},
		},
		{
			name:  "name blank",
			yaml:  "- name: web\n- name: '   '",
			err:   "Process at index 1 must have a non-empty 'name' string",
			field: "name",
			path:  []int{1},
		},
		{
			name:  "name not a string",
			yaml:  "- name: 123",
			err:   "Process at index 0 must have a non-empty 'name' string",
			field: "name",
			path:  []int{0},
		},
		{
			name:  "name checked before other fields",
			yaml:  "- dockerImage: 'app:'\n  envVars: nope",
			err:   "Process at index 0 must have a non-empty 'name' string",
			field: "name",
			path:  []int{0},
		},
		{
			name:  "docker image null",
			yaml:  "- name: web\n  dockerImage: null",
			err:   "Process at index 0 'dockerImage' must be a non-empty string if provided",
			field: "dockerImage",
			path:  []int{0},
		},
		{
			name:  "docker image empty",
			yaml:  "- name: web\n  dockerImage: ''",
			err:   "Process at index 0 'dockerImage' must be a non-empty string if provided",
			field: "dockerImage",
			path:  []int{0},
		},
		{
			name:  "docker image not a string",
			yaml:  "- name: web\n  dockerImage: [app]",
			err:   "Process at index 0 'dockerImage' must be a non-empty string if provided",
			field: "dockerImage",
			path:  []int{0},
		},
		{
			name:  "docker image ends with colon",
			yaml:  "- name: web\n  dockerImage: 'nginx:'",
			err:   "Process at index 0 'dockerImage' must not end with a colon (:)",
			field: "dockerImage",
			path:  []int{0},
		},
		{
			name:  "env vars not a list",
			yaml:  "- name: web\n  envVars: {value: x}",
			err:   "Process at index 0 'envVars' must be an array if provided",
			field: "envVars",
			path:  []int{0},
		},
		{
			name:  "env vars true",
			yaml:  "- name: web\n  envVars: true",
			err:   "Process at index 0 'envVars' must be an array if provided",
			field: "envVars",
			path:  []int{0},
		},
		{
			name:  "env vars non-empty string",
			yaml:  "- name: web\n  envVars: FOO=bar",
			err:   "Process at index 0 'envVars' must be an array if provided",
			field: "envVars",
			path:  []int{0},
		},
		{
			name:  "name only a byte order mark",
			yaml:  "- name: \"\\uFEFF \"",
			err:   "Process at index 0 must have a non-empty 'name' string",
			field: "name",
			path:  []int{0},
		},
		{
			name: "env var not an object",
			yaml: "- name: web\n  envVars: [FOO]",
			err:  "EnvVar at index 0 for process web must be an object",
			path: []int{0, 0},
		},
		{
			name:  "env var value missing",
			yaml:  "- name: web\n- name: worker\n  envVars:\n    - {name: A, value: a}\n    - {name: B}",
			err:   "EnvVar at index 1 for process worker must have a 'value' string",
			field: "value",
			path:  []int{1, 1},
		},
		{
			name:  "env var value not a string",
			yaml:  "- name: web\n  envVars:\n    - {name: PORT, value: 8080}",
			err:   "EnvVar at index 0 for process web must have a 'value' string",
			field: "value",
			path:  []int{0, 0},
		},
		{
			name:  "env var value null",
			yaml:  "- name: web\n  envVars:\n    - name: PORT\n      value:",
			err:   "EnvVar at index 0 for process web must have a 'value' string",
			field: "value",
			path:  []int{0, 0},
		},
		{
			name:  "first violation wins",
			yaml:  "- name: web\n  dockerImage: 'a:'\n- name: ''",
			err:   "Process at index 0 'dockerImage' must not end with a colon (:)",
			field: "dockerImage",
			path:  []int{0},
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			processList, err := processes.Validate(decode(t, testCase.yaml)).Unwrap()
			assert.Nil(t, processList)
			require.EqualError(t, err, testCase.err)

			var schemaErr *processes.SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, testCase.field, schemaErr.Field)
			assert.Equal(t, testCase.path, schemaErr.Path)
		})
	}
}

func TestValidateDockerImages(t *testing.T) {
	for image, valid := range map[string]bool{
		"nginx":             true,
		"nginx:1.25":        true,
		"registry:5000/app": true,
		"nginx:":            false,
		"registry:5000/a:":  false,
	} {
		t.Run(image, func(t *testing.T) {
			input := []any{map[string]any{"name": "web", "dockerImage": image}}
			result := processes.Validate(input)
			assert.Equal(t, valid, result.OK())
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	for _, testCase := range []struct {
		name string
		yaml string
	}{
		{"name only", "- name: web"},
		{"empty env vars", "- name: web\n  envVars: []"},
		{"null env vars", "- name: web\n  envVars: null"},
		{"false env vars", "- name: web\n  envVars: false"},
		{"zero env vars", "- name: web\n  envVars: 0"},
		{"empty string env vars", "- name: web\n  envVars: ''"},
		{"empty env var value", "- name: web\n  envVars:\n    - {name: EMPTY, value: ''}"},
		{"unknown fields", "- name: web\n  replicas: 3\n  ports: [80]"},
		{"several processes", "- name: web\n  dockerImage: app:1.0\n- name: worker\n  dockerImage: app:1.0"},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			result := processes.Validate(decode(t, testCase.yaml))
			assert.True(t, result.OK())
			assert.NoError(t, result.Err())
		})
	}
}

func TestValidateTypedFields(t *testing.T) {
	input := decode(t, `
- name: web
  dockerImage: app:1.0
  envVars:
    - name: GREETING
      value: hello
    - name: EMPTY
      value: ""
- name: worker
`)
	processList, err := processes.Validate(input).Unwrap()
	require.NoError(t, err)
	require.Len(t, processList, 2)

	assert.Equal(t, "web", processList[0].Name)
	assert.Equal(t, "app:1.0", processList[0].Image())
	require.Len(t, processList[0].EnvVars, 2)
	assert.Equal(t, "GREETING", processList[0].EnvVars[0].Name)
	assert.Equal(t, "hello", processList[0].EnvVars[0].Value)
	assert.Equal(t, "", processList[0].EnvVars[1].Value)

	assert.Equal(t, "worker", processList[1].Name)
	assert.Nil(t, processList[1].DockerImage)
	assert.Nil(t, processList[1].EnvVars)
}

func TestValidatedListSerializesVerbatim(t *testing.T) {
	input := decode(t, `
- name: web
  dockerImage: app:1.0
  replicas: 2
  envVars:
    - name: A
      value: "1"
      secret: true
- name: worker
  envVars: []
`)
	expected, err := json.Marshal(input)
	require.NoError(t, err)

	processList, err := processes.Validate(input).Unwrap()
	require.NoError(t, err)

	actual, err := json.Marshal(processList)
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(actual))
}

func TestValidateIsIdempotent(t *testing.T) {
	input := decode(t, "- name: web\n  dockerImage: app:1.0\n  envVars: [{name: A, value: b}]")

	first, err := processes.Validate(input).Unwrap()
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	var again any
	require.NoError(t, json.Unmarshal(firstJSON, &again))

	second, err := processes.Validate(again).Unwrap()
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestProcessSpecMarshalWithoutSource(t *testing.T) {
	image := "app:1.0"
	p := processes.ProcessSpec{
		Name:        "web",
		DockerImage: &image,
		EnvVars:     []processes.EnvVar{{Name: "A", Value: "b"}},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"web","dockerImage":"app:1.0","envVars":[{"name":"A","value":"b"}]}`, string(data))
}

func TestValidateFalsyEnvVarsPassThrough(t *testing.T) {
	for _, value := range []any{false, 0, 0.0, ""} {
		input := []any{map[string]any{"name": "web", "envVars": value}}

		processList, err := processes.Validate(input).Unwrap()
		require.NoError(t, err)
		assert.Nil(t, processList[0].EnvVars)

		expected, err := json.Marshal(input)
		require.NoError(t, err)
		actual, err := json.Marshal(processList)
		require.NoError(t, err)
		assert.JSONEq(t, string(expected), string(actual))
	}
}

func TestValidateBlankNames(t *testing.T) {
	for _, name := range []string{"", " ", "\t\n", "\ufeff", " \ufeff\u00a0"} {
		result := processes.Validate([]any{map[string]any{"name": name}})
		assert.EqualError(t, result.Err(), "Process at index 0 must have a non-empty 'name' string", "%q", name)
	}
}
