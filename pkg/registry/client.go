//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -destination=mock_registry.gen.go -package=registry -source=client.go Registry

// Package registry talks to an npm-compatible package registry.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sambabib/dependency-version-checker/pkg/logger"
	"github.com/sambabib/dependency-version-checker/pkg/manifest"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

// abbreviatedAccept asks for the corgi document, which carries dist-tags but
// drops readmes and most per-version metadata.
const abbreviatedAccept = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8, */*"

// Registry resolves package metadata.
type Registry interface {
	// Manifest returns the manifest of the latest version of name.
	Manifest(ctx context.Context, name string) (manifest.PackageManifest, error)
	// Latest returns only the version tagged latest for name.
	Latest(ctx context.Context, name string) (string, error)
}

// Client is a Registry backed by HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Client for the registry at baseURL. An empty baseURL
// selects DefaultURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		userAgent:  "dvc",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the registry root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// packument is the subset of the registry document we decode.
type packument struct {
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}

type versionInfo struct {
	Dependencies    manifest.Dependencies `json:"dependencies"`
	DevDependencies manifest.Dependencies `json:"devDependencies"`
}

// Manifest fetches {baseURL}/{name} and extracts the latest version's
// dependencies and devDependencies.
func (c *Client) Manifest(ctx context.Context, name string) (manifest.PackageManifest, error) {
	doc, err := c.fetch(ctx, name, "application/json")
	if err != nil {
		return manifest.PackageManifest{}, err
	}

	raw, ok := doc.Versions[doc.DistTags.Latest]
	if !ok {
		return manifest.PackageManifest{}, &ParseError{
			Package: name,
			Reason:  fmt.Sprintf("versions has no entry for latest version %q", doc.DistTags.Latest),
		}
	}

	var info versionInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return manifest.PackageManifest{}, &ParseError{Package: name, Reason: "malformed version entry", Err: err}
	}

	return manifest.PackageManifest{
		Name:            name,
		Version:         doc.DistTags.Latest,
		Dependencies:    info.Dependencies,
		DevDependencies: info.DevDependencies,
	}, nil
}

// Latest fetches {baseURL}/{name} and returns dist-tags.latest.
func (c *Client) Latest(ctx context.Context, name string) (string, error) {
	doc, err := c.fetch(ctx, name, abbreviatedAccept)
	if err != nil {
		return "", err
	}
	return doc.DistTags.Latest, nil
}

func (c *Client) fetch(ctx context.Context, name, accept string) (*packument, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, name)
	logger.Debugf("Fetching from registry: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Package: name, URL: url, Err: err}
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Package: name, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{Package: name, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Package: name, URL: url, Err: err}
	}

	var doc packument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{Package: name, Reason: "body is not valid JSON", Err: err}
	}
	if doc.DistTags.Latest == "" {
		return nil, &ParseError{Package: name, Reason: "missing dist-tags.latest"}
	}

	logger.Debugf("Registry: %s latest is %s", name, doc.DistTags.Latest)
	return &doc, nil
}
