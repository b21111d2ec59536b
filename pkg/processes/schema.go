package processes

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Presence decides when an optional field counts as provided.
type Presence int

const (
	// Required fields are always checked; a missing key is checked as a null value.
	Required Presence = iota

	// Keyed fields are provided whenever the key exists, even when its value is null.
	Keyed

	// Truthy fields are provided when their value is truthy: null, false, zero and "" count as absent.
	Truthy
)

func (p Presence) provided(value any, present bool) bool {
	switch p {
	case Keyed:
		return present
	case Truthy:
		return present && truthy(value)
	default:
		return true
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return len(v) > 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// Check is a single constraint on a field value.
type Check struct {
	Valid   func(value any) bool
	Message string
}

// FieldRule lists the checks for one field of an entity, in evaluation order.
// If Each is set, the field holds a list and every element is validated against it.
type FieldRule struct {
	Field    string
	Presence Presence
	Checks   []Check
	Each     *EntitySchema
}

// EntitySchema describes a structured record.
type EntitySchema struct {
	// Subject names the record at a position in violation messages.
	// Owner is the name of the enclosing record, if any.
	Subject func(index int, owner string) string

	// NameField holds the record's name, passed as owner to nested records.
	NameField string

	Rules []FieldRule
}

const notObjectMessage = "must be an object"

// SchemaError is the first violation found in a process list.
type SchemaError struct {
	// Path holds the list indices leading to the offending record;
	// empty when the top-level value itself is wrong.
	Path    []int
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	return e.Message
}

// ProcessIndex returns the index of the offending process, or -1.
func (e *SchemaError) ProcessIndex() int {
	if len(e.Path) == 0 {
		return -1
	}
	return e.Path[0]
}

var EnvVarSchema = &EntitySchema{
	Subject: func(index int, owner string) string {
		return fmt.Sprintf("EnvVar at index %d for process %s", index, owner)
	},
	Rules: []FieldRule{
		{
			Field:    "value",
			Presence: Required,
			Checks: []Check{
				{Valid: isString, Message: "must have a 'value' string"},
			},
		},
	},
}

var ProcessSchema = &EntitySchema{
	Subject: func(index int, _ string) string {
		return fmt.Sprintf("Process at index %d", index)
	},
	NameField: "name",
	Rules: []FieldRule{
		{
			Field:    "name",
			Presence: Required,
			Checks: []Check{
				{Valid: isNonBlankString, Message: "must have a non-empty 'name' string"},
			},
		},
		{
			Field:    "dockerImage",
			Presence: Keyed,
			Checks: []Check{
				{Valid: isNonBlankString, Message: "'dockerImage' must be a non-empty string if provided"},
				{Valid: not(hasSuffix(":")), Message: "'dockerImage' must not end with a colon (:)"},
			},
		},
		{
			Field:    "envVars",
			Presence: Truthy,
			Checks: []Check{
				{Valid: isList, Message: "'envVars' must be an array if provided"},
			},
			Each: EnvVarSchema,
		},
	},
}

// evaluate validates a single record at index of its enclosing list.
func (s *EntitySchema) evaluate(value any, index int, owner string, parent []int) *SchemaError {
	path := make([]int, len(parent), len(parent)+1)
	copy(path, parent)
	path = append(path, index)

	subject := s.Subject(index, owner)

	record, ok := value.(map[string]any)
	if !ok {
		return &SchemaError{
			Path:    path,
			Message: subject + " " + notObjectMessage,
		}
	}

	for _, rule := range s.Rules {
		fieldValue, present := record[rule.Field]
		if !rule.Presence.provided(fieldValue, present) {
			continue
		}

		for _, check := range rule.Checks {
			if !check.Valid(fieldValue) {
				return &SchemaError{
					Path:    path,
					Field:   rule.Field,
					Message: subject + " " + check.Message,
				}
			}
		}

		if rule.Each == nil {
			continue
		}

		name, _ := record[s.NameField].(string)
		for j, element := range fieldValue.([]any) {
			if err := rule.Each.evaluate(element, j, name, path); err != nil {
				return err
			}
		}
	}

	return nil
}

func isString(value any) bool {
	_, ok := value.(string)
	return ok
}

func isNonBlankString(value any) bool {
	s, ok := value.(string)
	return ok && len(strings.TrimFunc(s, isBlank)) > 0
}

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func isList(value any) bool {
	_, ok := value.([]any)
	return ok
}

func hasSuffix(suffix string) func(any) bool {
	return func(value any) bool {
		s, ok := value.(string)
		return ok && strings.HasSuffix(s, suffix)
	}
}

func not(fn func(any) bool) func(any) bool {
	return func(value any) bool {
		return !fn(value)
	}
}
