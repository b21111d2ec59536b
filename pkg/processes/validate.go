package processes

const (
	NotArrayMessage   = "processes must be an array"
	EmptyArrayMessage = "processes array must not be empty"
)

// Result is the outcome of validating a decoded process list.
// Exactly one of its processes or error is set.
type Result struct {
	processes []ProcessSpec
	err       *SchemaError
}

func (r Result) OK() bool {
	return r.err == nil
}

func (r Result) Processes() []ProcessSpec {
	return r.processes
}

// Err returns the schema violation, or nil.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r Result) Unwrap() ([]ProcessSpec, error) {
	return r.processes, r.Err()
}

// Validate checks a decoded value against ProcessSchema.
//
// Elements are checked in index order, and within an element in rule order;
// the first violation is returned and nothing else is reported.
func Validate(raw any) Result {
	list, ok := raw.([]any)
	if !ok {
		return Result{err: &SchemaError{Message: NotArrayMessage}}
	}

	if len(list) == 0 {
		return Result{err: &SchemaError{Message: EmptyArrayMessage}}
	}

	processes := make([]ProcessSpec, 0, len(list))
	for i, element := range list {
		if err := ProcessSchema.evaluate(element, i, "", nil); err != nil {
			return Result{err: err}
		}
		processes = append(processes, processFromRecord(element.(map[string]any)))
	}

	return Result{processes: processes}
}
