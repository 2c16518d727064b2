package analyzer

import (
	"context"
	"strings"

	"github.com/sambabib/dependency-version-checker/pkg/logger"
	"github.com/sambabib/dependency-version-checker/pkg/registry"
)

var _ Analyzer = (*NpmAnalyzer)(nil)

// NpmAnalyzer checks npm packages for outdated dependencies.
type NpmAnalyzer struct {
	RegistryURL string // Allow overriding the registry URL for testing

	registry      registry.Registry
	clientOptions []registry.Option
}

// Option configures an NpmAnalyzer.
type Option func(*NpmAnalyzer)

// WithRegistry makes the analyzer resolve packages through reg instead of
// an HTTP client built from RegistryURL.
func WithRegistry(reg registry.Registry) Option {
	return func(a *NpmAnalyzer) { a.registry = reg }
}

// WithRegistryURL sets the registry base URL.
func WithRegistryURL(url string) Option {
	return func(a *NpmAnalyzer) { a.RegistryURL = url }
}

// WithClientOptions passes options to the HTTP registry client.
func WithClientOptions(opts ...registry.Option) Option {
	return func(a *NpmAnalyzer) { a.clientOptions = append(a.clientOptions, opts...) }
}

// NewNpmAnalyzer creates a new NpmAnalyzer
func NewNpmAnalyzer(opts ...Option) *NpmAnalyzer {
	a := &NpmAnalyzer{} // RegistryURL will be empty, so default will be used
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *NpmAnalyzer) client() registry.Registry {
	if a.registry != nil {
		return a.registry
	}
	c := registry.NewClient(a.RegistryURL, a.clientOptions...)
	logger.Debugf("NPM: using registry %s", c.BaseURL())
	return c
}

// Check fetches the named packages, resolves the latest version of all their
// dependencies and devDependencies and returns the ones whose declared range
// is not satisfied. Any failure aborts the whole check.
func (a *NpmAnalyzer) Check(ctx context.Context, names ...string) (Report, error) {
	if len(names) == 0 {
		logger.Debugf("NPM: no packages requested, nothing to check")
		return Report{}, nil
	}
	logger.Debugf("NPM: checking %s", strings.Join(names, ", "))

	reg := a.client()

	manifests, err := FetchAll(ctx, reg, names)
	if err != nil {
		return nil, err
	}

	table, err := Resolve(ctx, reg, manifests)
	if err != nil {
		return nil, err
	}

	report := FindOutdated(manifests, table)
	logger.Debugf("NPM: %d outdated dependencies across %d package(s)", report.Count(), len(report))
	return report, nil
}
