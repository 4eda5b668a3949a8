package transforms

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads transform definitions from a yaml file holding one list per
// document
func LoadFile(path string) (Set, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var set Set
	decoder := yaml.NewDecoder(bytes.NewReader(contents))
	for {
		var definitions []*TransformDefinition
		err := decoder.Decode(&definitions)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding transforms %s: %w", path, err)
		}

		set = append(set, definitions...)
	}

	return set, nil
}
