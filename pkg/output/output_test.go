package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sambabib/dependency-version-checker/pkg/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() analyzer.Report {
	return analyzer.Report{
		{Name: "zoo", Outdated: []analyzer.OutdatedEntry{
			{Name: "left-pad", Using: "^1.0.0", Latest: "2.0.0"},
			{Name: "chalk", Using: ">=4.0.0 <5.0.0", Latest: "5.3.0"},
		}},
		{Name: "app", Outdated: []analyzer.OutdatedEntry{
			{Name: "tap", Using: "~16.3.0", Latest: "16.4.1"},
		}},
	}
}

func TestWriteTextReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTextReport(&buf, sampleReport()))

	want := strings.Join([]string{
		"+ zoo:",
		"| + left-pad",
		"| | + using: ^1.0.0",
		"| | + latest: 2.0.0",
		"| + chalk",
		"| | + using: >=4.0.0 <5.0.0",
		"| | + latest: 5.3.0",
		"+ app:",
		"| + tap",
		"| | + using: ~16.3.0",
		"| | + latest: 16.4.1",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteTextReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTextReport(&buf, analyzer.Report{}))
	assert.Empty(t, buf.String())
}

func TestGenerateJSONReport(t *testing.T) {
	out, err := GenerateJSONReport(sampleReport())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"zoo": [
			{"left-pad": {"using": "^1.0.0", "latest": "2.0.0"}},
			{"chalk": {"using": ">=4.0.0 <5.0.0", "latest": "5.3.0"}}
		],
		"app": [
			{"tap": {"using": "~16.3.0", "latest": "16.4.1"}}
		]
	}`, string(out))

	s := string(out)
	assert.Less(t, strings.Index(s, `"zoo"`), strings.Index(s, `"app"`))
	assert.Less(t, strings.Index(s, `"left-pad"`), strings.Index(s, `"chalk"`))
	assert.Contains(t, s, `">=4.0.0 <5.0.0"`)
}

func TestGenerateJSONReport_Empty(t *testing.T) {
	out, err := GenerateJSONReport(analyzer.Report{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestGenerateYAMLReport(t *testing.T) {
	out, err := GenerateYAMLReport(sampleReport())
	require.NoError(t, err)

	var decoded map[string][]map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, map[string][]map[string]map[string]string{
		"zoo": {
			{"left-pad": {"using": "^1.0.0", "latest": "2.0.0"}},
			{"chalk": {"using": ">=4.0.0 <5.0.0", "latest": "5.3.0"}},
		},
		"app": {
			{"tap": {"using": "~16.3.0", "latest": "16.4.1"}},
		},
	}, decoded)

	s := string(out)
	assert.Less(t, strings.Index(s, "zoo:"), strings.Index(s, "app:"))
}

func TestGenerateYAMLReport_Empty(t *testing.T) {
	out, err := GenerateYAMLReport(analyzer.Report{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestGenerateSarifReport(t *testing.T) {
	end := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out, err := GenerateSarifReport(sampleReport(), SarifOptions{
		RegistryURL: "https://registry.npmjs.org",
		ToolVersion: "1.2.3",
		StartTime:   end.Add(-2 * time.Second),
		EndTime:     end,
	})
	require.NoError(t, err)

	var sarif SarifReport
	require.NoError(t, json.Unmarshal(out, &sarif))
	assert.Equal(t, "2.1.0", sarif.Version)
	require.Len(t, sarif.Runs, 1)

	run := sarif.Runs[0]
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	assert.Equal(t, "2024-05-01T11:59:58Z", run.Invocations[0].StartTimeUtc)
	assert.Equal(t, "2024-05-01T12:00:00Z", run.Invocations[0].EndTimeUtc)
	require.Len(t, run.Results, 3)

	assert.Equal(t, "outdated-major", run.Results[0].RuleID)
	assert.Equal(t, "warning", run.Results[0].Level)
	assert.Equal(t, "https://registry.npmjs.org/zoo", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Contains(t, run.Results[0].Message.Text, "left-pad")

	// compound ranges have no single base version
	assert.Equal(t, "outdated", run.Results[1].RuleID)

	assert.Equal(t, "outdated-minor", run.Results[2].RuleID)
	assert.Equal(t, "note", run.Results[2].Level)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		using, latest, rule string
	}{
		{"^1.0.0", "2.0.0", "outdated-major"},
		{"~1.2.0", "1.3.0", "outdated-minor"},
		{"1.2.3", "1.2.4", "outdated-patch"},
		{"~1.2", "2.0.0", "outdated-major"},
		{"git+https://example.com/x.git", "1.0.0", "outdated"},
		{"^1.0.0", "garbage", "outdated"},
	}
	for _, tt := range tests {
		t.Run(tt.using+"->"+tt.latest, func(t *testing.T) {
			rule, _ := classify(analyzer.OutdatedEntry{Name: "x", Using: tt.using, Latest: tt.latest})
			assert.Equal(t, tt.rule, rule)
		})
	}
}
