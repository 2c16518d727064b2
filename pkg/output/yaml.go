package output

import (
	"github.com/sambabib/dependency-version-checker/pkg/analyzer"
	"gopkg.in/yaml.v3"
)

// GenerateYAMLReport converts the report to YAML with the same shape and
// ordering as GenerateJSONReport.
func GenerateYAMLReport(report analyzer.Report) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, pkg := range report {
		entries := &yaml.Node{Kind: yaml.SequenceNode}
		for _, dep := range pkg.Outdated {
			var pair yaml.Node
			if err := pair.Encode(versionPair{Using: dep.Using, Latest: dep.Latest}); err != nil {
				return nil, err
			}
			entries.Content = append(entries.Content, &yaml.Node{
				Kind:    yaml.MappingNode,
				Content: []*yaml.Node{scalar(dep.Name), &pair},
			})
		}
		root.Content = append(root.Content, scalar(pkg.Name), entries)
	}
	if len(root.Content) == 0 {
		root.Style = yaml.FlowStyle
	}
	return yaml.Marshal(root)
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
