package schema

import "sort"

// Schema is a map of payload field names to their expected types.
type Schema map[string]Type

// Validate checks data against the schema.
// Every failure is reported; fields are visited in name order so messages are stable.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		fieldType := schema[key]
		value, exists := data[key]
		if !exists {
			if isOptional(fieldType) {
				continue
			}
			errs = append(errs, &FieldError{Field: key, Reason: "is required"})
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &FieldError{Field: key, Reason: err.Error(), Got: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// TypeMap renders the schema as field name to type string, the inverse of ParseTypeMap.
func (s Schema) TypeMap() map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string, len(s))
	for k, t := range s {
		if t == nil {
			continue
		}
		out[k] = t.Name()
	}
	return out
}
