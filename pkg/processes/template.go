package processes

import (
	"fmt"
	"os"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/ghodss/yaml"
)

type TemplateVariables map[string]any

// Template renders the processes text as a handlebars template.
// Without variables the text is returned untouched.
func Template(text string, ctx TemplateVariables) (string, error) {
	if len(ctx) == 0 {
		return text, nil
	}

	template, err := raymond.Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %s", err)
	}

	output, err := template.Exec(unescaped(ctx))
	if err != nil {
		return "", fmt.Errorf("execute template: %s", err)
	}

	return output, nil
}

// unescaped marks every string variable as safe, so that raymond does not HTML-escape it.
// The rendered text is YAML, where entities such as &amp; would end up in the payload.
func unescaped(value any) any {
	switch v := value.(type) {
	case string:
		return raymond.SafeString(v)
	case TemplateVariables:
		return unescaped(map[string]any(v))
	case map[string]any:
		m := make(map[string]any, len(v))
		for key, val := range v {
			m[key] = unescaped(val)
		}
		return m
	case []any:
		list := make([]any, len(v))
		for i := range v {
			list[i] = unescaped(v[i])
		}
		return list
	default:
		return v
	}
}

// VariablesFromFile reads template variables from a YAML or JSON file.
func VariablesFromFile(path string) (TemplateVariables, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: open file: %s", path, err)
	}

	vars := TemplateVariables{}
	err = yaml.Unmarshal(file, &vars)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", path, err)
	}

	return vars, nil
}

// VariablesFromSlice parses KEY=VALUE pairs. A bare KEY is set to true.
func VariablesFromSlice(vars []string) TemplateVariables {
	tv := TemplateVariables{}
	for _, keyval := range vars {
		tokens := strings.SplitN(keyval, "=", 2)
		switch len(tokens) {
		case 2: // KEY=VAL
			tv[tokens[0]] = tokens[1]
		case 1: // KEY
			tv[tokens[0]] = true
		}
	}

	return tv
}
