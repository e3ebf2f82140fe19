// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-url2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether getenv describes a CI runner.
func InCI(getenv func(string) string) bool {
	return getenv("CI") != "" ||
		getenv("GITHUB_ACTIONS") != "" ||
		getenv("GITLAB_CI") != "" ||
		getenv("JENKINS_URL") != ""
}

// ForBrowserConnect returns hints for browser launch errors, suggesting the
// environment variables that are not set yet.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string

	if (InCI(getenv) || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" && getenv("CHROME_PATH") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "run 'url2pdf doctor' to check the browser setup")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the navigation timeout.
func ForTimeout() string {
	return format("for slow pages, use --timeout (e.g. --timeout 2m)")
}

// ForExhausted returns hints for URLs that failed every attempt.
func ForExhausted() string {
	return format("raise --attempts or --timeout; re-run with -v to see each attempt")
}

// ForInputFile returns hints for an unreadable URL list.
func ForInputFile(path string) string {
	return format("create " + path + " with one URL per line, or use --input")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	userDir := string(filepath.Separator) + "url2pdf" + string(filepath.Separator)
	for _, p := range searchedPaths {
		if strings.Contains(p, userDir) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForPublish returns hints for S3 upload errors.
func ForPublish() string {
	return format("check AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY (or the AWS profile), the bucket region, and --s3-bucket")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
