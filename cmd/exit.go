package cmd

import (
	"context"
	"errors"

	"github.com/sambabib/dependency-version-checker/pkg/manifest"
	"github.com/sambabib/dependency-version-checker/pkg/registry"
)

// Exit codes, one per error kind so scripts can tell failures apart.
const (
	ExitSuccess          = 0
	ExitFailure          = 1
	ExitNetwork          = 2
	ExitHTTPStatus       = 3
	ExitParse            = 4
	ExitManifestNotFound = 5
)

func exitCode(err error) int {
	var (
		netErr    *registry.NetworkError
		statusErr *registry.HTTPStatusError
		parseErr  *registry.ParseError
	)
	switch {
	case isManifestNotFound(err):
		return ExitManifestNotFound
	case errors.As(err, &statusErr):
		return ExitHTTPStatus
	case errors.As(err, &parseErr):
		return ExitParse
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return ExitNetwork
	default:
		return ExitFailure
	}
}

func isManifestNotFound(err error) bool {
	var notFound *manifest.ManifestNotFoundError
	return errors.As(err, &notFound)
}
