// Package processes holds the process descriptors submitted to the Ptah control plane,
// together with the schema they are validated against.
package processes

import (
	"encoding/json"
)

// ProcessSpec is one deployable unit: a name, an optional image and optional environment variables.
//
// A ProcessSpec produced by Validate remembers the exact fields it was decoded from,
// and serializes back to them unchanged. Fields the schema does not know about are kept.
type ProcessSpec struct {
	Name        string
	DockerImage *string
	EnvVars     []EnvVar

	fields map[string]any
}

// EnvVar is a single environment variable of a process. Only Value is validated.
type EnvVar struct {
	Name  string
	Value string

	fields map[string]any
}

func (p ProcessSpec) MarshalJSON() ([]byte, error) {
	if p.fields != nil {
		return json.Marshal(p.fields)
	}

	fields := map[string]any{
		"name": p.Name,
	}
	if p.DockerImage != nil {
		fields["dockerImage"] = *p.DockerImage
	}
	if p.EnvVars != nil {
		fields["envVars"] = p.EnvVars
	}

	return json.Marshal(fields)
}

func (e EnvVar) MarshalJSON() ([]byte, error) {
	if e.fields != nil {
		return json.Marshal(e.fields)
	}

	fields := map[string]any{
		"value": e.Value,
	}
	if len(e.Name) > 0 {
		fields["name"] = e.Name
	}

	return json.Marshal(fields)
}

// Image returns the docker image, or an empty string when none was given.
func (p ProcessSpec) Image() string {
	if p.DockerImage == nil {
		return ""
	}
	return *p.DockerImage
}

func processFromRecord(record map[string]any) ProcessSpec {
	p := ProcessSpec{
		fields: record,
	}

	p.Name, _ = record["name"].(string)

	if image, ok := record["dockerImage"].(string); ok {
		p.DockerImage = &image
	}

	if list, ok := record["envVars"].([]any); ok {
		p.EnvVars = make([]EnvVar, 0, len(list))
		for _, item := range list {
			envRecord, _ := item.(map[string]any)
			p.EnvVars = append(p.EnvVars, envVarFromRecord(envRecord))
		}
	}

	return p
}

func envVarFromRecord(record map[string]any) EnvVar {
	e := EnvVar{
		fields: record,
	}
	e.Name, _ = record["name"].(string)
	e.Value, _ = record["value"].(string)
	return e
}
