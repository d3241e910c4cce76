package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the schema as its TypeMap, e.g. {"by":"int?"}.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	for field, t := range s {
		if t == nil {
			return nil, fmt.Errorf("schema field %q has no type", field)
		}
	}
	return json.Marshal(s.TypeMap())
}

// UnmarshalJSON reads a TypeMap back through ParseTypeMap.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	parsed, err := ParseTypeMap(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
