package preflight

import (
	"context"

	"votd/internal/config"
	"votd/internal/secrets"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

// RunAll executes every applicable check for cfg. Feature checks only run
// when the feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config, creds secrets.Credentials) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Package directory", cfg.Paths.PackageDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckReachable(ctx, "Dictionary", cfg.Leo.BaseURL, cfg.Leo.UserAgent),
	}

	if cfg.WordPress.Site != "" {
		results = append(results, CheckCredentials("WordPress credentials", creds.RequireWordPress()))
	}
	if cfg.Forvo.Enabled {
		results = append(results,
			CheckDirectoryAccess("Audio directory", cfg.Paths.AudioDir),
			CheckCredentials("Forvo API key", creds.RequireForvo()),
		)
	}
	if cfg.Drive.Enabled {
		results = append(results, CheckCredentials("Drive credentials", creds.RequireDrive()))
	}
	return results
}
