package preflight

import (
	"context"
	"fmt"

	"submate/internal/config"
	"submate/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinFreeBytes is the free-space floor for the data directory. Temp WAV
// staging for a long movie can take a few gigabytes.
const MinFreeBytes = 1 << 30

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available || status.Optional,
			Detail: binaryDetail(status),
		})
	}

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDiskSpace("Data directory space", cfg.Paths.DataDir, MinFreeBytes))

	if cfg.Translation.Enabled {
		results = append(results, CheckTranslation(ctx, cfg.Translation))
	}

	return results
}

// CheckSystemDeps evaluates all external binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

func binaryDetail(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	if status.Optional {
		return fmt.Sprintf("%s (optional)", status.Detail)
	}
	return status.Detail
}
