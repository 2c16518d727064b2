package analyzer

import "context"

// OutdatedEntry is a declared dependency whose latest published version does
// not satisfy the declared range.
type OutdatedEntry struct {
	Name   string `json:"name"`   // dependency name
	Using  string `json:"using"`  // range declared by the checked package
	Latest string `json:"latest"` // version tagged latest in the registry
}

// PackageReport lists the outdated dependencies of one checked package,
// dependencies first, then devDependencies, each in manifest order.
type PackageReport struct {
	Name     string          `json:"name"`
	Outdated []OutdatedEntry `json:"outdated"`
}

// Report holds one PackageReport per checked package that has at least one
// outdated dependency, in the order the packages were requested.
type Report []PackageReport

// Lookup returns the outdated entries of the named package.
func (r Report) Lookup(name string) ([]OutdatedEntry, bool) {
	for _, p := range r {
		if p.Name == name {
			return p.Outdated, true
		}
	}
	return nil, false
}

// Count returns the total number of outdated entries across all packages.
func (r Report) Count() int {
	n := 0
	for _, p := range r {
		n += len(p.Outdated)
	}
	return n
}

// VersionTable maps a package name to its latest published version.
type VersionTable map[string]string

// Analyzer defines the interface for dependency checkers.
type Analyzer interface {
	// Check reports the outdated dependencies of the named packages.
	Check(ctx context.Context, names ...string) (Report, error)
}
