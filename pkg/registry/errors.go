package registry

import "fmt"

// NetworkError reports a transport failure while talking to the registry.
type NetworkError struct {
	Package string
	URL     string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s from %s: %v", e.Package, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a registry response whose status was not 200.
type HTTPStatusError struct {
	Package    string
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("registry returned status code %d for %s (%s)", e.StatusCode, e.Package, e.URL)
}

// ParseError reports a registry response that is not valid JSON or does not
// have the expected packument shape.
type ParseError struct {
	Package string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid registry response for %s: %s: %v", e.Package, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid registry response for %s: %s", e.Package, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
