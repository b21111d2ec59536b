package processes

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError is returned when the processes text is not well-formed YAML.
// The message is fixed; the parser's own complaint is available through Unwrap.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return "Invalid YAML format for processes input"
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

var errMultipleDocuments = errors.New("expected a single YAML document, found more")

// Decode parses YAML text into plain Go values: []any, map[string]any, string, numbers, bool and nil.
// Empty text decodes to nil.
func Decode(text string) (any, error) {
	var value any

	decoder := yaml.NewDecoder(strings.NewReader(text))
	err := decoder.Decode(&value)
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, &ParseError{Cause: err}
	}

	var extra any
	err = decoder.Decode(&extra)
	if err == nil {
		return nil, &ParseError{Cause: errMultipleDocuments}
	} else if err != io.EOF {
		return nil, &ParseError{Cause: err}
	}

	return normalize(value), nil
}

// normalize makes a decoded YAML value JSON-serializable.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			v[key] = normalize(val)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for key, val := range v {
			m[fmt.Sprint(key)] = normalize(val)
		}
		return m
	case []any:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return v
	default:
		return v
	}
}
