package manifest

import "sort"

// NodeManifest is the subset of package.json the planner looks at.
type NodeManifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Main                 string            `json:"main"`
	Scripts              map[string]string `json:"scripts"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Engines              map[string]string `json:"engines"`
}

// AllDependencyNames returns every declared name across all dependency maps, sorted.
func (m *NodeManifest) AllDependencyNames() []string {
	seen := make(map[string]bool)
	for _, deps := range []map[string]string{
		m.Dependencies, m.DevDependencies, m.PeerDependencies, m.OptionalDependencies,
	} {
		for name := range deps {
			seen[name] = true
		}
	}
	return SortedKeys(seen)
}

// ComposerManifest is the subset of composer.json the planner looks at.
type ComposerManifest struct {
	Name       string            `json:"name"`
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

// CargoManifest is the subset of Cargo.toml the planner looks at.
// Dependency values are either a version string or an inline table.
type CargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Edition string `toml:"edition"`
	} `toml:"package"`
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
}

// PomManifest is the subset of a Maven pom.xml the planner looks at.
type PomManifest struct {
	ArtifactID string `xml:"artifactId"`
	Parent     struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
	} `xml:"parent"`
	Dependencies []PomDependency `xml:"dependencies>dependency"`
}

type PomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// Coordinate returns "groupId:artifactId".
func (d PomDependency) Coordinate() string {
	if d.GroupID == "" {
		return d.ArtifactID
	}
	return d.GroupID + ":" + d.ArtifactID
}

// SortedKeys returns map keys in lexical order so repeated runs stay byte-identical.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
