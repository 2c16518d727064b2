package analyzer

import (
	"context"
	"fmt"

	"github.com/sambabib/dependency-version-checker/pkg/logger"
	"github.com/sambabib/dependency-version-checker/pkg/manifest"
	"github.com/sambabib/dependency-version-checker/pkg/registry"
	"github.com/sourcegraph/conc/pool"
)

// Resolve builds the VersionTable for the fetched manifests: every checked
// package maps to its own version, and every dependency or devDependency
// they declare maps to its latest version. Each dependency is fetched once,
// and dependencies that are themselves checked packages are not fetched.
func Resolve(ctx context.Context, reg registry.Registry, manifests []manifest.PackageManifest) (VersionTable, error) {
	table := seedVersions(manifests)
	pending := pendingDependencies(manifests, table)
	logger.Debugf("Resolving latest version of %d dependencies", len(pending))

	latest, err := fetchLatest(ctx, reg, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependency versions: %w", err)
	}
	for name, version := range latest {
		table[name] = version
	}
	return table, nil
}

func seedVersions(manifests []manifest.PackageManifest) VersionTable {
	table := make(VersionTable, len(manifests))
	for _, m := range manifests {
		table[m.Name] = m.Version
	}
	return table
}

// pendingDependencies returns the declared dependency names missing from
// table, each once, in first-seen order.
func pendingDependencies(manifests []manifest.PackageManifest, table VersionTable) []string {
	seen := make(map[string]struct{})
	var pending []string
	for _, m := range manifests {
		for _, deps := range []manifest.Dependencies{m.Dependencies, m.DevDependencies} {
			for _, name := range deps.Names() {
				if _, ok := table[name]; ok {
					continue
				}
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				pending = append(pending, name)
			}
		}
	}
	return pending
}

func fetchLatest(ctx context.Context, reg registry.Registry, names []string) (VersionTable, error) {
	if len(names) == 0 {
		return VersionTable{}, nil
	}

	type resolved struct {
		name    string
		version string
	}

	p := pool.NewWithResults[resolved]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for _, name := range names {
		name := name
		p.Go(func(ctx context.Context) (resolved, error) {
			version, err := reg.Latest(ctx, name)
			if err != nil {
				return resolved{}, err
			}
			return resolved{name: name, version: version}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	latest := make(VersionTable, len(results))
	for _, r := range results {
		latest[r.name] = r.version
	}
	return latest, nil
}
