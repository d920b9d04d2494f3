package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// scalarString decodes a JSON scalar into its string form. Numbers keep
// their literal digits. Null yields nil.
func scalarString(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil, fmt.Errorf("expected a scalar value, got %s", raw)
	}
	return &s, nil
}

// UnmarshalJSON accepts string, number and boolean values.
func (s *Strings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out := make(Strings, len(raw))
	for k, v := range raw {
		str, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		if str != nil {
			out[k] = *str
		} else {
			out[k] = ""
		}
	}
	*s = out
	return nil
}

// UnmarshalJSON coerces a numeric or boolean defaultValue to a string.
func (p *ResultProperty) UnmarshalJSON(data []byte) error {
	type plain ResultProperty
	var raw struct {
		plain
		DefaultValue json.RawMessage `json:"defaultValue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	def, err := scalarString(raw.DefaultValue)
	if err != nil {
		return fmt.Errorf("defaultValue: %w", err)
	}
	*p = ResultProperty(raw.plain)
	p.DefaultValue = def
	return nil
}
