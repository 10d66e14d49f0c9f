package intent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML mapping of label -> keyword list. The mapping order
// in the file becomes the scan order.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading intents file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing intents: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidTable)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping, line %d", ErrInvalidTable, root.Line)
	}

	var t Table
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]

		var keywords []string
		if err := val.Decode(&keywords); err != nil {
			return nil, fmt.Errorf("%w: %s, line %d: %v", ErrInvalidTable, key.Value, val.Line, err)
		}
		t = append(t, Intent{Label: key.Value, Keywords: keywords})
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
