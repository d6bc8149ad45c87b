package preflight

import (
	"errors"
	"fmt"

	"sticqr/internal/config"
)

// Result reports the outcome of a single preflight check. An Advisory
// failure is reported but does not block a run.
type Result struct {
	Name     string
	Passed   bool
	Advisory bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckReadableImage("Sticker template", cfg.Paths.Template),
	}
	if cfg.Paths.Icon != "" {
		icon := CheckReadableImage("Icon", cfg.Paths.Icon)
		icon.Advisory = true
		results = append(results, icon)
	}
	if config.DatabaseIsFile(cfg.Paths.Database) {
		results = append(results, CheckParentWritable("Database directory", cfg.Paths.Database))
	}
	return results
}

// Err joins the blocking failures into one error, or returns nil when none
// failed. Advisory failures are left to Warnings.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("preflight failed: %w", errors.Join(errs...))
}

// Warnings returns the advisory checks that failed.
func Warnings(results []Result) []Result {
	var warnings []Result
	for _, r := range results {
		if !r.Passed && r.Advisory {
			warnings = append(warnings, r)
		}
	}
	return warnings
}
