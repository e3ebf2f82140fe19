package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	url2pdf "github.com/alnah/go-url2pdf"
	"github.com/alnah/go-url2pdf/internal/config"
	"github.com/alnah/go-url2pdf/internal/fileutil"
	"github.com/alnah/go-url2pdf/internal/hints"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Input    inputInfo  `json:"input"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Source  string `json:"source,omitempty"` // env var or "lookup"
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
	ChromePath    string `json:"chrome_path"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
	WorkWritable bool `json:"work_dir_writable"`
}

// inputInfo describes the default URL list.
type inputInfo struct {
	File  string `json:"file"`
	Found bool   `json:"found"`
	URLs  int    `json:"urls"`
}

// lookPath locates a browser when no variable names one. Replaced in tests.
var lookPath = launcher.LookPath

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(env.Getenv)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(getenv func(string) string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  getenv("ROD_NO_SANDBOX"),
			BrowserBin: getenv("ROD_BROWSER_BIN"),
			ChromePath: getenv("CHROME_PATH"),
		},
	}

	checkChrome(result)
	checkEnvironment(result, getenv)
	checkSystem(result)
	checkInput(result, config.DefaultInputFile)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkChrome detects the browser both engines will launch.
func checkChrome(result *doctorResult) {
	path, source := result.Env.BrowserBin, "ROD_BROWSER_BIN"
	if path == "" {
		path, source = result.Env.ChromePath, "CHROME_PATH"
	}
	if path == "" {
		var found bool
		path, found = lookPath()
		if !found {
			// rod downloads a managed Chromium on first run; chromedp cannot.
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found. The rod engine will download one; set ROD_BROWSER_BIN for chromedp")
			return
		}
		source = "lookup"
	}

	if _, err := os.Stat(path); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s (from %s)", path, source))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = path
	result.Chrome.Source = source

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from env or lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// A custom binary disables the sandbox, as the engines do.
	result.Chrome.Sandbox = result.Env.NoSandbox != "1" && result.Env.BrowserBin == "" && result.Env.ChromePath == ""
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)
	result.Env.CI = hints.InCI(getenv) || getenv("CIRCLECI") != ""

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && result.Env.BrowserBin == "" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("URL2PDF_CONTAINER") == "1" {
		return true, "URL2PDF_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies that temp files and run artifacts can be written.
func checkSystem(result *doctorResult) {
	if fileutil.DirWritable(os.TempDir()) {
		result.System.TempWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	}

	if fileutil.DirWritable(".") {
		result.System.WorkWritable = true
	} else {
		result.Warnings = append(result.Warnings,
			"Working directory not writable: use --screenshots and --output elsewhere")
	}
}

// checkInput counts the URLs of the list a bare "url2pdf" would read.
func checkInput(result *doctorResult, path string) {
	result.Input.File = path

	urls, err := url2pdf.ReadURLsFile(path)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("URL list %s not readable: create it or pass --input", path))
		return
	}
	result.Input.Found = true
	result.Input.URLs = len(urls)
	if len(urls) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("URL list %s is empty: the PDF will have no pages", path))
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "url2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s (%s)\n", r.Chrome.Path, r.Chrome.Source)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	printCheck(w, r.System.TempWritable, "Temp directory", "ERROR")
	printCheck(w, r.System.WorkWritable, "Working directory", "WARN")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Input")
	if r.Input.Found {
		fmt.Fprintf(w, "  [OK] %s: %d URLs\n", r.Input.File, r.Input.URLs)
	} else {
		fmt.Fprintf(w, "  [WARN] %s: not found\n", r.Input.File)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to capture")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printCheck(w io.Writer, ok bool, what, failLevel string) {
	if ok {
		fmt.Fprintf(w, "  [OK] %s: writable\n", what)
		return
	}
	fmt.Fprintf(w, "  [%s] %s: not writable\n", failLevel, what)
}
