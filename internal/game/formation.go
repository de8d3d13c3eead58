package game

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed formations.yaml
var formationsYAML []byte

// DefaultFormation fills three slots per line, keepers first
const DefaultFormation = "legacy"

// Formation maps roster slots to roles
type Formation struct {
	Name  string
	Slots []Role
}

// RoleFor returns the role of roster slot i. Slots past the end reuse the last role.
func (f Formation) RoleFor(i int) Role {
	if len(f.Slots) == 0 {
		return RoleMidfielder
	}
	return f.Slots[min(i, len(f.Slots)-1)]
}

// Formations is a named set of formations
type Formations map[string]Formation

type formationsFile struct {
	Formations map[string][]Role `yaml:"formations"`
}

// DefaultFormations returns the embedded formation tables
func DefaultFormations() (Formations, error) {
	return parseFormations(formationsYAML, nil)
}

// LoadFormations reads the embedded tables and overlays the ones in path.
// An empty path returns the embedded tables only.
func LoadFormations(path string) (Formations, error) {
	base, err := DefaultFormations()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading formations file: %w", err)
	}
	return parseFormations(data, base)
}

func parseFormations(data []byte, into Formations) (Formations, error) {
	var file formationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing formations: %w", err)
	}
	if into == nil {
		into = make(Formations, len(file.Formations))
	}
	for name, slots := range file.Formations {
		if len(slots) == 0 {
			return nil, fmt.Errorf("%w: formation %q has no slots", ErrInvalidArgument, name)
		}
		into[name] = Formation{Name: name, Slots: slots}
	}
	return into, nil
}

// Get looks up a formation by name
func (fs Formations) Get(name string) (Formation, error) {
	f, ok := fs[name]
	if !ok {
		return Formation{}, fmt.Errorf("%w: unknown formation %q", ErrInvalidArgument, name)
	}
	return f, nil
}

// Names lists the formation names in sorted order
func (fs Formations) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
