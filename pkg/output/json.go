package output

import (
	"bytes"
	"encoding/json"

	"github.com/iancoleman/orderedmap"
	"github.com/sambabib/dependency-version-checker/pkg/analyzer"
)

type versionPair struct {
	Using  string `json:"using" yaml:"using"`
	Latest string `json:"latest" yaml:"latest"`
}

// GenerateJSONReport converts the report to JSON shaped as
// {"pkg": [{"dep": {"using": "^1.0.0", "latest": "2.0.0"}}]}, keeping the
// order of packages and dependencies.
func GenerateJSONReport(report analyzer.Report) ([]byte, error) {
	root := orderedmap.New()
	root.SetEscapeHTML(false)
	for _, pkg := range report {
		entries := make([]*orderedmap.OrderedMap, 0, len(pkg.Outdated))
		for _, dep := range pkg.Outdated {
			entry := orderedmap.New()
			entry.SetEscapeHTML(false)
			entry.Set(dep.Name, versionPair{Using: dep.Using, Latest: dep.Latest})
			entries = append(entries, entry)
		}
		root.Set(pkg.Name, entries)
	}

	raw, err := root.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
