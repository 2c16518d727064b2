package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sambabib/dependency-version-checker/pkg/logger"
)

// FileName is the name of the npm manifest inside a module directory.
const FileName = "package.json"

// ManifestNotFoundError is returned when no package.json exists in the
// directory the tool was asked to read it from.
type ManifestNotFoundError struct {
	Path string
	Err  error
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("no %s found at %s", FileName, e.Path)
}

func (e *ManifestNotFoundError) Unwrap() error { return e.Err }

// localManifest is the part of a local package.json we care about.
type localManifest struct {
	Name string `json:"name"`
}

// ReadPackageName returns the "name" field of the package.json in dir.
func ReadPackageName(dir string) (string, error) {
	filePath := filepath.Join(dir, FileName)
	logger.Debugf("Reading %s", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &ManifestNotFoundError{Path: filePath, Err: err}
		}
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	var pkg localManifest
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("invalid %s: %w", filePath, err)
	}
	if pkg.Name == "" {
		return "", fmt.Errorf("%s has no \"name\" field", filePath)
	}
	return pkg.Name, nil
}
