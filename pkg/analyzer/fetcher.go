package analyzer

import (
	"context"
	"fmt"

	"github.com/sambabib/dependency-version-checker/pkg/logger"
	"github.com/sambabib/dependency-version-checker/pkg/manifest"
	"github.com/sambabib/dependency-version-checker/pkg/registry"
	"github.com/sourcegraph/conc/pool"
)

// FetchAll retrieves the manifest of every named package concurrently.
//
// Duplicate names are fetched once. The result follows the order of first
// appearance in names. The first failed fetch cancels the others and is
// returned; no partial result is produced.
func FetchAll(ctx context.Context, reg registry.Registry, names []string) ([]manifest.PackageManifest, error) {
	names = uniqueNames(names)
	if len(names) == 0 {
		return nil, nil
	}
	logger.Debugf("Fetching manifests of %d package(s)", len(names))

	type fetched struct {
		index    int
		manifest manifest.PackageManifest
	}

	p := pool.NewWithResults[fetched]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for i, name := range names {
		i, name := i, name
		p.Go(func(ctx context.Context) (fetched, error) {
			m, err := reg.Manifest(ctx, name)
			if err != nil {
				return fetched{}, err
			}
			return fetched{index: i, manifest: m}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifests: %w", err)
	}

	manifests := make([]manifest.PackageManifest, len(names))
	for _, r := range results {
		manifests[r.index] = r.manifest
	}
	return manifests, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
