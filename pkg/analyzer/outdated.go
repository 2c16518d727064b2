package analyzer

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sambabib/dependency-version-checker/pkg/manifest"
)

// FindOutdated compares every declared range of every manifest against the
// resolved latest versions in table. Packages without outdated dependencies
// are left out of the report.
func FindOutdated(manifests []manifest.PackageManifest, table VersionTable) Report {
	report := Report{}
	for _, m := range manifests {
		outdated := checkDependencies(m.Dependencies, table)
		outdated = append(outdated, checkDependencies(m.DevDependencies, table)...)
		if len(outdated) == 0 {
			continue
		}
		report = append(report, PackageReport{Name: m.Name, Outdated: outdated})
	}
	return report
}

func checkDependencies(deps manifest.Dependencies, table VersionTable) []OutdatedEntry {
	var outdated []OutdatedEntry
	for _, name := range deps.Names() {
		using, _ := deps.Range(name)
		latest := table[name]
		if Satisfies(latest, using) {
			continue
		}
		outdated = append(outdated, OutdatedEntry{Name: name, Using: using, Latest: latest})
	}
	return outdated
}

// Satisfies reports whether version falls inside the npm-style range rng.
// An empty range accepts any version. Dist-tags such as "latest" are not
// ranges and, like anything else that does not parse on either side, are
// not satisfied. A prerelease version only matches through a comparator that
// carries a prerelease on the same major.minor.patch.
func Satisfies(version, rng string) bool {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		rng = "*"
	}

	constraint, err := semver.NewConstraint(rng)
	if err != nil {
		return false
	}
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return false
	}
	if !constraint.Check(v) {
		return false
	}
	if v.Prerelease() == "" {
		return true
	}

	for _, alt := range strings.Split(rng, "||") {
		alt = strings.TrimSpace(alt)
		c, err := semver.NewConstraint(alt)
		if err != nil || !c.Check(v) {
			continue
		}
		if allowsPrerelease(alt, v) {
			return true
		}
	}
	return false
}

// allowsPrerelease reports whether one of the comparators in the range set
// alt names a prerelease of the same major.minor.patch as v.
func allowsPrerelease(alt string, v *semver.Version) bool {
	fields := strings.FieldsFunc(alt, func(r rune) bool { return r == ' ' || r == ',' })
	for _, field := range fields {
		field = strings.TrimLeft(field, "^~=<>v")
		cv, err := semver.NewVersion(field)
		if err != nil || cv.Prerelease() == "" {
			continue
		}
		if cv.Major() == v.Major() && cv.Minor() == v.Minor() && cv.Patch() == v.Patch() {
			return true
		}
	}
	return false
}
