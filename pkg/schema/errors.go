package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one payload field that did not match its declared type.
type FieldError struct {
	Field  string
	Reason string
	Got    any
}

func (e *FieldError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("payload.%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("payload.%s %s, got %T", e.Field, e.Reason, e.Got)
}

// AggregateError collects every FieldError of one payload.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid payload fields: %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// FieldErrors returns the field failures carried anywhere in err's chain.
func FieldErrors(err error) []*FieldError {
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		return nil
	}
	out := make([]*FieldError, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var fe *FieldError
		if errors.As(e, &fe) {
			out = append(out, fe)
		}
	}
	return out
}
