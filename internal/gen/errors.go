package gen

import (
	"errors"
	"fmt"
)

// UnknownGeneratorError reports a generator name that is not registered.
// It is a configuration error: the run should not have started with an
// expression naming a generator that does not exist.
type UnknownGeneratorError struct {
	Name string
}

func (e *UnknownGeneratorError) Error() string {
	return fmt.Sprintf("unknown generator %q", e.Name)
}

// ArgumentError reports a generator invoked with out-of-domain arguments.
// It is a per-value failure: the affected node stays unmodified and the run
// continues.
type ArgumentError struct {
	Generator string
	Message   string
	Err       error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generator %q: %s: %v", e.Generator, e.Message, e.Err)
	}
	return fmt.Sprintf("generator %q: %s", e.Generator, e.Message)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// IsArgumentError reports whether err is a per-value argument failure.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

func argErrorf(generator, format string, args ...any) error {
	return &ArgumentError{Generator: generator, Message: fmt.Sprintf(format, args...)}
}
