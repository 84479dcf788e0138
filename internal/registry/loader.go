package registry

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ruleFile struct {
	Rules []Rule `toml:"rule"`
}

// Load reads an alias rule file and returns a frozen snapshot.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias rules: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML rule data into a frozen snapshot.
func Parse(data []byte) (*Snapshot, error) {
	var f ruleFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alias rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, ErrNoRules
	}
	return NewSnapshot(f.Rules)
}
