// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// entriesFile is the on-disk shape of a YAML entries file.
type entriesFile struct {
	Entries []Entry `yaml:"entries"`
}

// LoadYAML reads knowledge entries from a YAML file:
//
//	entries:
//	  - id: raft_consensus
//	    text: Raft is a consensus algorithm ...
//	    tags: [raft, consensus]
//
// Entry order in the file is the insertion order used for tie-breaking.
func LoadYAML(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entries file %s: %w", path, err)
	}

	var f entriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing entries file %s: %w", path, err)
	}
	if len(f.Entries) == 0 {
		return nil, fmt.Errorf("entries file %s contains no entries", path)
	}

	seen := make(map[string]bool, len(f.Entries))
	for i, e := range f.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: missing id", i)
		}
		if e.Text == "" {
			return nil, fmt.Errorf("entry %q: missing text", e.ID)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("entry %q: duplicate id", e.ID)
		}
		seen[e.ID] = true
	}

	return f.Entries, nil
}

// WriteYAML writes entries to a YAML entries file readable by LoadYAML.
func WriteYAML(path string, entries []Entry) error {
	data, err := yaml.Marshal(entriesFile{Entries: entries})
	if err != nil {
		return fmt.Errorf("marshaling entries: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing entries file %s: %w", path, err)
	}
	return nil
}
