package ingest

import (
	"os"

	"github.com/athanor/sigildex"
	"gopkg.in/yaml.v3"
)

// Entry describes one source document in a manifest. A bare string
// entry is shorthand for an entry with only a URL.
type Entry struct {
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Year      int    `yaml:"year"`
	Tradition string `yaml:"tradition"`
	URL       string `yaml:"url"`
	LocalPath string `yaml:"local_path"`
	License   string `yaml:"license"`
	Notes     string `yaml:"notes"`
}

// UnmarshalYAML accepts either a mapping or a bare URL string.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var url string
		if err := value.Decode(&url); err != nil {
			return err
		}
		e.URL = url
		return nil
	}

	type plain Entry
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// Manifest is a flat list of entries. The file may also be written as a
// map of named groups; the group name becomes the default tradition for
// entries that don't set their own.
type Manifest struct {
	Entries []Entry
}

// UnmarshalYAML flattens both accepted manifest shapes.
func (m *Manifest) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		return value.Decode(&m.Entries)

	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			var group string
			if err := value.Content[i].Decode(&group); err != nil {
				return err
			}
			var entries []Entry
			if err := value.Content[i+1].Decode(&entries); err != nil {
				return err
			}
			for _, e := range entries {
				if e.Tradition == "" {
					e.Tradition = group
				}
				m.Entries = append(m.Entries, e)
			}
		}
		return nil

	default:
		return sigildex.Errorf(sigildex.EINVALID, "manifest must be a list or a map of groups")
	}
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sigildex.Errorf(sigildex.ENOTFOUND, "manifest not found: %s", path)
		}
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, sigildex.Errorf(sigildex.EINVALID, "cannot parse manifest %s: %v", path, err)
	}
	return &m, nil
}
