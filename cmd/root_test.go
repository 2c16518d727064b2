package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRegistry serves raw packument bodies keyed by package name.
func mockRegistry(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func packument(latest, deps string) string {
	return fmt.Sprintf(`{"dist-tags":{"latest":%q},"versions":{%q:{"dependencies":%s}}}`, latest, latest, deps)
}

// execute runs dvc in a clean working directory.
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	chdir(t, t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_TextReport(t *testing.T) {
	server := mockRegistry(t, map[string]string{
		"a":        packument("1.0.0", `{"left-pad":"^1.0.0","lodash":"^4.0.0"}`),
		"left-pad": packument("2.0.0", `{}`),
		"lodash":   packument("4.17.21", `{}`),
	})

	code, stdout, stderr := execute(t, "--registry", server.URL, "a")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, strings.Join([]string{
		"Checking the dependencies of: a",
		"+ a:",
		"| + left-pad",
		"| | + using: ^1.0.0",
		"| | + latest: 2.0.0",
		"",
	}, "\n"), stdout)
}

func TestRun_JSONReport(t *testing.T) {
	server := mockRegistry(t, map[string]string{
		"a":     packument("1.0.0", `{"chalk":"^4.0.0"}`),
		"b":     packument("1.0.0", `{"chalk":"^5.0.0"}`),
		"chalk": packument("5.3.0", `{}`),
	})

	code, stdout, stderr := execute(t, "--registry", server.URL, "--format", "json", "a", "b")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.JSONEq(t, `{"a":[{"chalk":{"using":"^4.0.0","latest":"5.3.0"}}]}`, stdout)
}

func TestRun_MachineReadableKeepsStdoutClean(t *testing.T) {
	server := mockRegistry(t, map[string]string{
		"a": packument("1.0.0", `{}`),
	})

	code, stdout, stderr := execute(t, "--registry", server.URL, "--format", "json", "a")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.JSONEq(t, `{}`, stdout)
	assert.NotContains(t, stdout, "Checking")
	assert.Contains(t, stderr, "Checking the dependencies of: a")
}

func TestRun_ReadsLocalPackageJSON(t *testing.T) {
	server := mockRegistry(t, map[string]string{
		"my-module": packument("3.0.0", `{}`),
	})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"my-module"}`), 0644))

	code, stdout, stderr := execute(t, "--registry", server.URL, "--path", dir)
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "Checking the dependencies of: my-module\n", stdout)
}

func TestRun_NoPackageJSON(t *testing.T) {
	code, stdout, stderr := execute(t, "--path", t.TempDir())
	assert.Equal(t, ExitManifestNotFound, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no package.json found")
	assert.Contains(t, stderr, "usage:")
	assert.Contains(t, stderr, "dvc [--registry <url>] [<pkg-name>[ <pkg-name>]]")
}

func TestRun_ErrorExitCodes(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	server := mockRegistry(t, map[string]string{
		"broken": `not json`,
		"a":      packument("1.0.0", `{"gone":"^1.0.0"}`),
	})

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "http status", args: []string{"--registry", server.URL, "missing"}, wantCode: ExitHTTPStatus, wantErr: "status code 404"},
		{name: "dependency http status", args: []string{"--registry", server.URL, "a"}, wantCode: ExitHTTPStatus, wantErr: "gone"},
		{name: "parse", args: []string{"--registry", server.URL, "broken"}, wantCode: ExitParse, wantErr: "invalid registry response"},
		{name: "network", args: []string{"--registry", closedURL, "a"}, wantCode: ExitNetwork, wantErr: "network error"},
		{name: "bad format", args: []string{"--format", "xml", "a"}, wantCode: ExitFailure, wantErr: "unknown output format"},
		{name: "bad registry", args: []string{"--registry", "not a url", "a"}, wantCode: ExitFailure, wantErr: "invalid registry URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr, "Error: ")
			assert.Contains(t, stderr, tt.wantErr)
			assert.NotContains(t, stderr, "usage:")
		})
	}
}

func TestRun_RegistryFromEnvironment(t *testing.T) {
	server := mockRegistry(t, map[string]string{
		"a": packument("1.0.0", `{}`),
	})
	t.Setenv("DVC_REGISTRY", server.URL)

	code, _, stderr := execute(t, "--format", "yaml", "a")
	assert.Equal(t, ExitSuccess, code, stderr)
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := execute(t, "--version")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, Version)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
