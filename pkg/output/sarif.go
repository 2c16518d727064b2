package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sambabib/dependency-version-checker/pkg/analyzer"
)

// SARIF format specification: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SarifReport represents the top-level SARIF report structure
type SarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SarifRun `json:"runs"`
}

// SarifRun represents a single run of the analysis tool
type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Results     []SarifResult     `json:"results"`
	Invocations []SarifInvocation `json:"invocations"`
}

// SarifTool represents the tool that performed the analysis
type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

// SarifDriver represents the driver of the tool
type SarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SarifRule `json:"rules"`
}

// SarifRule represents a rule that was evaluated during the analysis
type SarifRule struct {
	ID               string       `json:"id"`
	ShortDescription SarifMessage `json:"shortDescription"`
	FullDescription  SarifMessage `json:"fullDescription"`
	Help             SarifMessage `json:"help"`
}

// SarifResult represents a result of the analysis
type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SarifMessage    `json:"message"`
	Locations []SarifLocation `json:"locations"`
}

// SarifMessage represents a message in the SARIF report
type SarifMessage struct {
	Text string `json:"text"`
}

// SarifLocation points at the registry document of the checked package
type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SarifInvocation represents an invocation of the tool
type SarifInvocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	StartTimeUtc        string `json:"startTimeUtc"`
	EndTimeUtc          string `json:"endTimeUtc"`
}

// SarifOptions describes the run the SARIF report belongs to.
type SarifOptions struct {
	RegistryURL string
	ToolVersion string
	StartTime   time.Time
	EndTime     time.Time
}

var sarifRules = []SarifRule{
	{
		ID:               "outdated-major",
		ShortDescription: SarifMessage{Text: "Dependency range excludes a new major version"},
		FullDescription:  SarifMessage{Text: "The latest published version of this dependency is a major release outside the declared range, which may include breaking changes."},
		Help:             SarifMessage{Text: "Review the changelog for breaking changes before widening the range."},
	},
	{
		ID:               "outdated-minor",
		ShortDescription: SarifMessage{Text: "Dependency range excludes a new minor version"},
		FullDescription:  SarifMessage{Text: "The latest published version of this dependency is a minor release outside the declared range."},
		Help:             SarifMessage{Text: "Consider widening the range to get new features."},
	},
	{
		ID:               "outdated-patch",
		ShortDescription: SarifMessage{Text: "Dependency range excludes a new patch version"},
		FullDescription:  SarifMessage{Text: "The latest published version of this dependency is a patch release outside the declared range."},
		Help:             SarifMessage{Text: "Consider widening the range to get bug fixes."},
	},
	{
		ID:               "outdated",
		ShortDescription: SarifMessage{Text: "Dependency range excludes the latest version"},
		FullDescription:  SarifMessage{Text: "The declared range of this dependency is not satisfied by its latest published version, or could not be interpreted as a semver range."},
		Help:             SarifMessage{Text: "Check the declared range against the latest published version."},
	},
}

// GenerateSarifReport converts the report to SARIF 2.1.0, one result per
// outdated dependency located at the checked package's registry document.
func GenerateSarifReport(report analyzer.Report, opts SarifOptions) ([]byte, error) {
	results := make([]SarifResult, 0, report.Count())
	for _, pkg := range report {
		for _, dep := range pkg.Outdated {
			ruleID, level := classify(dep)
			results = append(results, SarifResult{
				RuleID: ruleID,
				Level:  level,
				Message: SarifMessage{
					Text: fmt.Sprintf("%s: %s depends on %s, latest version is %s", pkg.Name, dep.Name, dep.Using, dep.Latest),
				},
				Locations: []SarifLocation{
					{
						PhysicalLocation: SarifPhysicalLocation{
							ArtifactLocation: SarifArtifactLocation{
								URI: fmt.Sprintf("%s/%s", opts.RegistryURL, pkg.Name),
							},
						},
					},
				},
			})
		}
	}

	end := opts.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	start := opts.StartTime
	if start.IsZero() {
		start = end
	}
	toolVersion := opts.ToolVersion
	if toolVersion == "" {
		toolVersion = "dev"
	}

	sarifReport := SarifReport{
		Schema:  "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Version: "2.1.0",
		Runs: []SarifRun{
			{
				Tool: SarifTool{
					Driver: SarifDriver{
						Name:           "dvc",
						Version:        toolVersion,
						InformationURI: "https://github.com/sambabib/dependency-version-checker",
						Rules:          sarifRules,
					},
				},
				Results: results,
				Invocations: []SarifInvocation{
					{
						ExecutionSuccessful: true,
						StartTimeUtc:        start.UTC().Format(time.RFC3339),
						EndTimeUtc:          end.UTC().Format(time.RFC3339),
					},
				},
			},
		},
	}

	return json.MarshalIndent(sarifReport, "", "  ")
}

// classify picks a rule by how far the latest version is ahead of the lowest
// version the declared range could mean.
func classify(dep analyzer.OutdatedEntry) (ruleID, level string) {
	latest, err := semver.NewVersion(dep.Latest)
	if err != nil {
		return "outdated", "warning"
	}
	base, err := semver.NewVersion(rangeBase(dep.Using))
	if err != nil {
		return "outdated", "warning"
	}

	switch {
	case latest.Major() != base.Major():
		return "outdated-major", "warning"
	case latest.Minor() != base.Minor():
		return "outdated-minor", "note"
	default:
		return "outdated-patch", "note"
	}
}

// rangeBase strips the operator of a simple range such as ^1.2.3 or ~1.2.
func rangeBase(rng string) string {
	for len(rng) > 0 && strings.ContainsRune("^~=<>v ", rune(rng[0])) {
		rng = rng[1:]
	}
	return rng
}
