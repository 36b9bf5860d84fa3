package preflight

import (
	"context"

	"mediascribe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckSourceDirectory("Source directory", cfg.Paths.SourceDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.WorkDir != "" {
		results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail}
		switch {
		case status.Available:
			result.Detail = status.Command
		case status.Optional:
			result.Detail = "optional, not found: " + status.Detail
		}
		results = append(results, result)
	}
	results = append(results, CheckCloudKey(cfg))
	return results
}
