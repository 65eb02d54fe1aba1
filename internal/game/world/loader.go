package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRoomsFile is the top-level YAML structure for a room preload file.
type yamlRoomsFile struct {
	Rooms []string `yaml:"rooms"`
}

// LoadRoomNamesFromFile reads a room preload YAML file:
//
//	rooms:
//	  - plaza
//	  - arena
//
// The named rooms are created empty at server start so clients can join
// well-known areas without racing to create them.
func LoadRoomNamesFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rooms file %s: %w", path, err)
	}
	return LoadRoomNamesFromBytes(data)
}

// LoadRoomNamesFromBytes parses and validates a room preload file.
// Empty and duplicate names are rejected so a bad content file fails
// loudly at boot instead of silently collapsing rooms.
func LoadRoomNamesFromBytes(data []byte) ([]string, error) {
	var file yamlRoomsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing rooms YAML: %w", err)
	}

	seen := make(map[string]bool, len(file.Rooms))
	for _, name := range file.Rooms {
		if name == "" {
			return nil, fmt.Errorf("rooms file: empty room name")
		}
		if seen[name] {
			return nil, fmt.Errorf("rooms file: duplicate room %q", name)
		}
		seen[name] = true
	}
	return file.Rooms, nil
}
