package output

import (
	"fmt"
	"io"

	"github.com/sambabib/dependency-version-checker/pkg/analyzer"
)

// WriteTextReport writes the report as a nested listing, one "+ pkg:" block
// per package with the declared range and latest version of each outdated
// dependency under it.
func WriteTextReport(w io.Writer, report analyzer.Report) error {
	for _, pkg := range report {
		if _, err := fmt.Fprintf(w, "+ %s:\n", pkg.Name); err != nil {
			return err
		}
		for _, dep := range pkg.Outdated {
			if _, err := fmt.Fprintf(w, "| + %s\n| | + using: %s\n| | + latest: %s\n", dep.Name, dep.Using, dep.Latest); err != nil {
				return err
			}
		}
	}
	return nil
}
