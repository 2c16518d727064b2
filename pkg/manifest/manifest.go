package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// PackageManifest is the metadata of the latest published version of a package.
type PackageManifest struct {
	Name            string       `json:"name"`
	Version         string       `json:"version"` // dist-tags.latest
	Dependencies    Dependencies `json:"dependencies"`
	DevDependencies Dependencies `json:"devDependencies"`
}

// Dependencies is an ordered mapping from dependency name to the declared
// semver range. Iteration follows the key order of the source document.
type Dependencies struct {
	names  []string
	ranges map[string]string
}

// NewDependencies builds a Dependencies from alternating name/range pairs.
func NewDependencies(pairs ...string) Dependencies {
	var d Dependencies
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Set(pairs[i], pairs[i+1])
	}
	return d
}

// Set adds or replaces a dependency. Replacing keeps the original position.
func (d *Dependencies) Set(name, rng string) {
	if d.ranges == nil {
		d.ranges = make(map[string]string)
	}
	if _, ok := d.ranges[name]; !ok {
		d.names = append(d.names, name)
	}
	d.ranges[name] = rng
}

// Range returns the declared range for name.
func (d Dependencies) Range(name string) (string, bool) {
	rng, ok := d.ranges[name]
	return rng, ok
}

// Names returns the dependency names in declaration order.
func (d Dependencies) Names() []string {
	return append([]string(nil), d.names...)
}

func (d Dependencies) Len() int {
	return len(d.names)
}

// UnmarshalJSON decodes a JSON object of string values, keeping key order.
func (d *Dependencies) UnmarshalJSON(data []byte) error {
	*d = Dependencies{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	om := orderedmap.New()
	if err := json.Unmarshal(data, om); err != nil {
		return err
	}
	for _, name := range om.Keys() {
		v, _ := om.Get(name)
		rng, ok := v.(string)
		if !ok {
			return fmt.Errorf("dependency %q: range must be a string, got %T", name, v)
		}
		d.Set(name, rng)
	}
	return nil
}

// MarshalJSON encodes the dependencies as a JSON object in declaration order.
func (d Dependencies) MarshalJSON() ([]byte, error) {
	om := orderedmap.New()
	for _, name := range d.names {
		om.Set(name, d.ranges[name])
	}
	return om.MarshalJSON()
}
