package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Replacement is one regular-expression substitution. Replacement may refer
// to capture groups as $1 or ${name}.
type Replacement struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// Replacements is an ordered list of substitutions, written in documents as a
// mapping from pattern to replacement. Document order is preserved and is the
// order in which substitutions apply.
type Replacements []Replacement

// UnmarshalYAML reads a mapping node pair by pair.
func (r *Replacements) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*r = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: replacements must be a mapping of pattern to replacement", value.Line)
	}

	out := make(Replacements, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: replacement pattern and value must be scalars", key.Line)
		}
		replacement := val.Value
		if val.Tag == "!!null" {
			replacement = ""
		}
		out = append(out, Replacement{Pattern: key.Value, Replacement: replacement})
	}
	*r = out
	return nil
}

// MarshalYAML writes the list back as an ordered mapping.
func (r Replacements) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, rep := range r {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: rep.Pattern},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: rep.Replacement},
		)
	}
	return node, nil
}

// UnmarshalJSON reads an object token by token to keep key order.
func (r *Replacements) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("replacements must be an object of pattern to replacement")
	}

	out := Replacements{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		pattern, ok := tok.(string)
		if !ok {
			return fmt.Errorf("replacement pattern must be a string")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("replacement %q: %w", pattern, err)
		}
		s, err := scalarString(value)
		if err != nil {
			return fmt.Errorf("replacement %q: %w", pattern, err)
		}
		rep := Replacement{Pattern: pattern}
		if s != nil {
			rep.Replacement = *s
		}
		out = append(out, rep)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

// MarshalJSON writes the list back as an object in list order.
func (r Replacements) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rep := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(rep.Pattern)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(rep.Replacement)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
